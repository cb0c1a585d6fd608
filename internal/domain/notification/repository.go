package notification

import (
	"context"
	"time"
)

// Repository defines the persistence contract for the email retry queue.
type Repository interface {
	Create(ctx context.Context, e *EmailRetryEntry) error
	FindAll(ctx context.Context) ([]*EmailRetryEntry, error)
	Update(ctx context.Context, e *EmailRetryEntry) error
	Delete(ctx context.Context, dbID uint) error

	// DeleteExpired drops entries created before the cutoff, bounding the
	// queue regardless of attempts remaining.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
