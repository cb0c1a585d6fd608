package entitlement

import "context"

// Repository defines the persistence contract for access keys.
type Repository interface {
	Create(ctx context.Context, key *AccessKey) error
	FindByKey(ctx context.Context, token string) (*AccessKey, error)

	// FindByPrefix resolves a key from its leading characters, as shown
	// in masked listings. Fails when the prefix matches no key or more
	// than one.
	FindByPrefix(ctx context.Context, prefix string) (*AccessKey, error)
	FindByOrderID(ctx context.Context, orderID string) (*AccessKey, error)
	List(ctx context.Context, offset, limit int) ([]*AccessKey, int64, error)
	Update(ctx context.Context, key *AccessKey) error

	// UpdatePreferredModel persists a preference in a single conditional
	// write. The plan condition makes the policy check and the write
	// atomic: plans are immutable, so a row matching both token and plan
	// is guaranteed to still be governed by the policy the caller
	// validated against. Returns false when no row matched.
	UpdatePreferredModel(ctx context.Context, token string, plan Plan, model ModelID) (bool, error)

	// RecordUsage bumps the request counter and last-used timestamp for
	// one metered request. Fire and forget; callers must not fail a
	// request on its error.
	RecordUsage(ctx context.Context, token string) error
}
