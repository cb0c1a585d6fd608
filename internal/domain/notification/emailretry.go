package notification

import (
	"fmt"
	"time"

	"keygate/internal/shared/biztime"
)

// EmailKind classifies queued deliveries.
type EmailKind string

const (
	// EmailKindKeyDelivery carries a freshly issued access key to the buyer.
	EmailKindKeyDelivery EmailKind = "key_delivery"
	// EmailKindAdminNotify alerts the administrator, e.g. about a new
	// manual-transfer order awaiting approval.
	EmailKindAdminNotify EmailKind = "admin_notify"
)

func (k EmailKind) IsValid() bool {
	return k == EmailKindKeyDelivery || k == EmailKindAdminNotify
}

const (
	// MaxAttempts bounds redelivery before the entry is dropped.
	MaxAttempts = 5
	// MaxAge bounds how long an entry may sit in the queue regardless of
	// attempts remaining.
	MaxAge = 24 * time.Hour
	// RetryInterval is the minimum spacing between delivery attempts.
	RetryInterval = time.Hour
)

// EmailRetryEntry is one failed delivery awaiting retry. Entries are
// created on a send failure, deleted on success, and dropped once they
// exhaust attempts or outlive MaxAge so the queue stays bounded.
type EmailRetryEntry struct {
	dbID          uint
	orderID       string
	kind          EmailKind
	recipient     string
	payload       map[string]string
	attempts      int
	createdAt     time.Time
	lastAttemptAt *time.Time
}

// NewEmailRetryEntry queues a failed delivery for later retry.
func NewEmailRetryEntry(orderID string, kind EmailKind, recipient string,
	payload map[string]string) (*EmailRetryEntry, error) {

	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid email kind: %s", kind)
	}
	if recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if payload == nil {
		payload = make(map[string]string)
	}

	return &EmailRetryEntry{
		orderID:   orderID,
		kind:      kind,
		recipient: recipient,
		payload:   payload,
		createdAt: biztime.NowUTC(),
	}, nil
}

// ReconstructEmailRetryEntry rebuilds an entry from persistence.
func ReconstructEmailRetryEntry(dbID uint, orderID string, kind EmailKind,
	recipient string, payload map[string]string, attempts int,
	createdAt time.Time, lastAttemptAt *time.Time) (*EmailRetryEntry, error) {

	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid email kind: %s", kind)
	}
	if payload == nil {
		payload = make(map[string]string)
	}

	return &EmailRetryEntry{
		dbID:          dbID,
		orderID:       orderID,
		kind:          kind,
		recipient:     recipient,
		payload:       payload,
		attempts:      attempts,
		createdAt:     createdAt,
		lastAttemptAt: lastAttemptAt,
	}, nil
}

func (e *EmailRetryEntry) DBID() uint {
	return e.dbID
}

func (e *EmailRetryEntry) OrderID() string {
	return e.orderID
}

func (e *EmailRetryEntry) Kind() EmailKind {
	return e.kind
}

func (e *EmailRetryEntry) Recipient() string {
	return e.recipient
}

func (e *EmailRetryEntry) Payload() map[string]string {
	return e.payload
}

func (e *EmailRetryEntry) Attempts() int {
	return e.attempts
}

func (e *EmailRetryEntry) CreatedAt() time.Time {
	return e.createdAt
}

func (e *EmailRetryEntry) LastAttemptAt() *time.Time {
	return e.lastAttemptAt
}

// RecordAttempt bumps the attempt counter after a failed delivery.
func (e *EmailRetryEntry) RecordAttempt() {
	now := biztime.NowUTC()
	e.attempts++
	e.lastAttemptAt = &now
}

// IsExpired reports whether the entry has outlived MaxAge.
func (e *EmailRetryEntry) IsExpired(now time.Time) bool {
	return now.Sub(e.createdAt) > MaxAge
}

// IsExhausted reports whether the entry has used all attempts.
func (e *EmailRetryEntry) IsExhausted() bool {
	return e.attempts >= MaxAttempts
}

// ShouldRetry reports whether a delivery attempt is due: the entry is
// neither expired nor exhausted and the last attempt is at least
// RetryInterval in the past.
func (e *EmailRetryEntry) ShouldRetry(now time.Time) bool {
	if e.IsExpired(now) || e.IsExhausted() {
		return false
	}
	if e.lastAttemptAt == nil {
		return true
	}
	return now.Sub(*e.lastAttemptAt) >= RetryInterval
}
