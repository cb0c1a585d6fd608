package notification

import (
	"time"

	"keygate/internal/domain/entitlement"
)

// EmailService is the outbound delivery contract. Implementations send
// one message synchronously; retry policy lives in the Notifier, not
// here.
type EmailService interface {
	// SendKeyDelivery mails a freshly issued access key to the buyer.
	SendKeyDelivery(to, name, key string, plan entitlement.Plan, expiresAt time.Time) error

	// SendAdminOrderAlert notifies the administrator about an order that
	// needs manual attention.
	SendAdminOrderAlert(to, orderID, name, email, plan, referral string) error
}
