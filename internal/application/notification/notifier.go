package notification

import (
	"context"
	"time"

	"keygate/internal/domain/entitlement"
	domain "keygate/internal/domain/notification"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/logger"
)

// Notifier sends emails and falls back to the persistent retry queue on
// failure. Callers treat every method as best-effort: delivery problems
// are queued and logged, never returned, so payment confirmation success
// stays independent of email delivery success.
type Notifier struct {
	email     EmailService
	retryRepo domain.Repository
	logger    logger.Interface
}

func NewNotifier(email EmailService, retryRepo domain.Repository, log logger.Interface) *Notifier {
	return &Notifier{
		email:     email,
		retryRepo: retryRepo,
		logger:    log,
	}
}

// DeliverKey attempts the key-delivery email and enqueues a retry entry
// when the send fails.
func (n *Notifier) DeliverKey(ctx context.Context, orderID, recipient, name, key, plan string, expiresAt time.Time) {
	payload := map[string]string{
		"name":       name,
		"key":        key,
		"plan":       plan,
		"expires_at": expiresAt.Format(time.RFC3339),
	}

	if err := n.send(domain.EmailKindKeyDelivery, orderID, recipient, payload); err != nil {
		n.logger.Warnw("key delivery email failed, queuing for retry",
			"order_id", orderID,
			"error", err,
		)
		n.enqueue(ctx, orderID, domain.EmailKindKeyDelivery, recipient, payload)
	}
}

// NotifyAdminOrder attempts the admin alert email for an order awaiting
// attention and enqueues a retry entry when the send fails.
func (n *Notifier) NotifyAdminOrder(ctx context.Context, adminAddress, orderID, name, email, plan, referral string) {
	if adminAddress == "" {
		return
	}

	payload := map[string]string{
		"order_id": orderID,
		"name":     name,
		"email":    email,
		"plan":     plan,
		"referral": referral,
	}

	if err := n.send(domain.EmailKindAdminNotify, orderID, adminAddress, payload); err != nil {
		n.logger.Warnw("admin alert email failed, queuing for retry",
			"order_id", orderID,
			"error", err,
		)
		n.enqueue(ctx, orderID, domain.EmailKindAdminNotify, adminAddress, payload)
	}
}

// Resend replays a queued entry through the same delivery path.
func (n *Notifier) Resend(e *domain.EmailRetryEntry) error {
	return n.send(e.Kind(), e.OrderID(), e.Recipient(), e.Payload())
}

func (n *Notifier) send(kind domain.EmailKind, orderID, recipient string, payload map[string]string) error {
	switch kind {
	case domain.EmailKindKeyDelivery:
		expiresAt, _ := time.Parse(time.RFC3339, payload["expires_at"])
		plan, err := entitlement.ParsePlan(payload["plan"])
		if err != nil {
			return err
		}
		return n.email.SendKeyDelivery(recipient, payload["name"], payload["key"], plan, expiresAt)
	case domain.EmailKindAdminNotify:
		return n.email.SendAdminOrderAlert(recipient, orderID, payload["name"], payload["email"], payload["plan"], payload["referral"])
	}
	return nil
}

func (n *Notifier) enqueue(ctx context.Context, orderID string, kind domain.EmailKind, recipient string, payload map[string]string) {
	entry, err := domain.NewEmailRetryEntry(orderID, kind, recipient, payload)
	if err != nil {
		n.logger.Errorw("failed to build email retry entry",
			"order_id", orderID,
			"error", err,
		)
		return
	}

	if err := n.retryRepo.Create(ctx, entry); err != nil {
		n.logger.Errorw("failed to enqueue email retry",
			"order_id", orderID,
			"error", err,
		)
	}
}

// RetryResult summarizes one pass over the retry queue.
type RetryResult struct {
	Sent      int
	Retried   int
	Dropped   int
	Escalated int
}

// ProcessRetryQueue walks the queue once: resends due entries, drops
// delivered and expired ones, and escalates exhausted key deliveries to
// the administrator. Designed to run on a fixed interval.
func (n *Notifier) ProcessRetryQueue(ctx context.Context, adminAddress string) (*RetryResult, error) {
	now := biztime.NowUTC()
	result := &RetryResult{}

	dropped, err := n.retryRepo.DeleteExpired(ctx, now.Add(-domain.MaxAge))
	if err != nil {
		return nil, err
	}
	result.Dropped += int(dropped)

	entries, err := n.retryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsExhausted() {
			n.escalate(ctx, adminAddress, entry)
			result.Escalated++
			if err := n.retryRepo.Delete(ctx, entry.DBID()); err != nil {
				n.logger.Errorw("failed to drop exhausted email retry",
					"order_id", entry.OrderID(),
					"error", err,
				)
			}
			continue
		}

		if !entry.ShouldRetry(now) {
			continue
		}

		if err := n.Resend(entry); err != nil {
			entry.RecordAttempt()
			result.Retried++
			if err := n.retryRepo.Update(ctx, entry); err != nil {
				n.logger.Errorw("failed to record email retry attempt",
					"order_id", entry.OrderID(),
					"error", err,
				)
			}
			continue
		}

		result.Sent++
		if err := n.retryRepo.Delete(ctx, entry.DBID()); err != nil {
			n.logger.Errorw("failed to remove delivered email retry",
				"order_id", entry.OrderID(),
				"error", err,
			)
		}
	}

	return result, nil
}

func (n *Notifier) escalate(ctx context.Context, adminAddress string, entry *domain.EmailRetryEntry) {
	if adminAddress == "" || entry.Kind() != domain.EmailKindKeyDelivery {
		return
	}

	payload := entry.Payload()
	if err := n.email.SendAdminOrderAlert(adminAddress, entry.OrderID(), payload["name"], entry.Recipient(), payload["plan"],
		"key delivery failed after all retry attempts"); err != nil {
		n.logger.Errorw("failed to escalate undeliverable key email",
			"order_id", entry.OrderID(),
			"error", err,
		)
	}
}
