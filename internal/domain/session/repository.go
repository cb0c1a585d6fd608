package session

import (
	"context"
	"time"
)

// Repository defines the persistence contract for sessions. The single
// active row per key is enforced here, not merely by convention.
type Repository interface {
	// Replace atomically deletes any existing session for the new
	// session's key and inserts the new row in one transaction.
	// Returns true when a prior session was displaced.
	Replace(ctx context.Context, s *Session) (bool, error)

	FindBySessionID(ctx context.Context, sessionID string) (*Session, error)
	FindByAccessKey(ctx context.Context, accessKey string) (*Session, error)

	// Heartbeat updates last_heartbeat_at for the session. Returns false
	// when the session no longer exists, which the caller surfaces as a
	// logged-out-elsewhere condition.
	Heartbeat(ctx context.Context, sessionID string, at time.Time) (bool, error)

	// Delete removes the session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteStale removes every session whose heartbeat is older than the
	// cutoff, conditioned on the stored timestamp so a heartbeat that
	// commits concurrently survives. Returns the number of rows removed.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
}
