package entitlement

import (
	"fmt"
	"time"

	"keygate/internal/shared/biztime"
	"keygate/internal/shared/id"
)

// AccessKey is the aggregate root for one purchased entitlement. A key is
// issued exactly once per approved order and is never deleted; expiration
// is a computed property so expired keys remain queryable for audit.
type AccessKey struct {
	id             uint
	key            string
	email          string
	plan           Plan
	preferredModel *ModelID
	orderID        string
	revoked        bool
	totalRequests  uint64
	lastUsedAt     *time.Time
	issuedAt       time.Time
	expiresAt      time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// NewAccessKey issues a fresh key for the given owner and plan. The token
// is generated here so the caller never supplies key material.
func NewAccessKey(email string, plan Plan, orderID string) (*AccessKey, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid plan: %s", plan)
	}

	token, err := id.NewAccessKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access key: %w", err)
	}

	now := biztime.NowUTC()
	return &AccessKey{
		key:       token,
		email:     email,
		plan:      plan,
		orderID:   orderID,
		issuedAt:  now,
		expiresAt: plan.ExpiryFrom(now),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructAccessKey rebuilds an AccessKey from persistence.
func ReconstructAccessKey(keyID uint, key, email string, plan Plan,
	preferredModel *ModelID, orderID string, revoked bool,
	totalRequests uint64, lastUsedAt *time.Time,
	issuedAt, expiresAt, createdAt, updatedAt time.Time) (*AccessKey, error) {

	if key == "" {
		return nil, fmt.Errorf("access key token cannot be empty")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid plan: %s", plan)
	}

	return &AccessKey{
		id:             keyID,
		key:            key,
		email:          email,
		plan:           plan,
		preferredModel: preferredModel,
		orderID:        orderID,
		revoked:        revoked,
		totalRequests:  totalRequests,
		lastUsedAt:     lastUsedAt,
		issuedAt:       issuedAt,
		expiresAt:      expiresAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (k *AccessKey) ID() uint {
	return k.id
}

func (k *AccessKey) SetID(keyID uint) error {
	if k.id != 0 {
		return fmt.Errorf("access key ID is already set")
	}
	if keyID == 0 {
		return fmt.Errorf("access key ID cannot be zero")
	}
	k.id = keyID
	return nil
}

func (k *AccessKey) Key() string {
	return k.key
}

func (k *AccessKey) Email() string {
	return k.email
}

func (k *AccessKey) Plan() Plan {
	return k.plan
}

func (k *AccessKey) PreferredModel() *ModelID {
	return k.preferredModel
}

func (k *AccessKey) OrderID() string {
	return k.orderID
}

func (k *AccessKey) Revoked() bool {
	return k.revoked
}

func (k *AccessKey) TotalRequests() uint64 {
	return k.totalRequests
}

func (k *AccessKey) LastUsedAt() *time.Time {
	return k.lastUsedAt
}

func (k *AccessKey) IssuedAt() time.Time {
	return k.issuedAt
}

func (k *AccessKey) ExpiresAt() time.Time {
	return k.expiresAt
}

func (k *AccessKey) CreatedAt() time.Time {
	return k.createdAt
}

func (k *AccessKey) UpdatedAt() time.Time {
	return k.updatedAt
}

// MaskedKey returns a redacted token safe for listings and logs.
func (k *AccessKey) MaskedKey() string {
	return id.MaskKey(k.key)
}

// IsExpired reports whether the key has lapsed at the given instant.
func (k *AccessKey) IsExpired(now time.Time) bool {
	return now.After(k.expiresAt)
}

// InGracePeriod reports whether the given instant falls after expiry but
// within the grace window.
func (k *AccessKey) InGracePeriod(now time.Time, grace time.Duration) bool {
	return now.After(k.expiresAt) && !now.After(k.expiresAt.Add(grace))
}

// SetPreferredModel updates the stored model preference. The policy check
// runs on every write, not just at creation, because a policy edit could
// shrink the allowed set after the key was issued.
func (k *AccessKey) SetPreferredModel(model ModelID) error {
	if !IsModelAllowed(k.plan, model) {
		return NewModelNotAllowedError(k.plan, model)
	}
	k.preferredModel = &model
	k.updatedAt = biztime.NowUTC()
	return nil
}

// ClearPreferredModel removes the stored preference, falling back to the
// plan default.
func (k *AccessKey) ClearPreferredModel() {
	k.preferredModel = nil
	k.updatedAt = biztime.NowUTC()
}

// Revoke disables the key ahead of its natural expiry. Idempotent.
func (k *AccessKey) Revoke() {
	if k.revoked {
		return
	}
	k.revoked = true
	k.updatedAt = biztime.NowUTC()
}

// EffectiveModel resolves the model tier a request should use: the stored
// preference when set, otherwise the plan default.
func (k *AccessKey) EffectiveModel() ModelID {
	if k.preferredModel != nil {
		return *k.preferredModel
	}
	return DefaultModel(k.plan)
}
