package gateway

import (
	"context"
	"net/http"
	"time"
)

// PaymentGateway defines the interface for payment gateway integrations.
type PaymentGateway interface {
	// VerifyCallback authenticates and parses a pushed payment event.
	// The signature MUST be checked before any state change; a failed
	// check returns an error and the caller must not touch the ledger.
	// The returned amount is in the smallest currency unit.
	VerifyCallback(req *http.Request) (*CallbackEvent, error)

	// QueryPayment asks the gateway directly for the state of a
	// transaction. Used by manual reconciliation when a webhook was
	// missed.
	QueryPayment(ctx context.Context, txRef string) (*PaymentState, error)
}

// CallbackEvent is a parsed, authenticated payment event.
type CallbackEvent struct {
	TransactionRef string
	Amount         uint64 // smallest currency unit
	Currency       string
	Live           bool
	PaidAt         time.Time
}

// PaymentState is the gateway's answer to a direct transaction query.
type PaymentState struct {
	TransactionRef string
	Paid           bool
	Amount         uint64 // smallest currency unit
	Currency       string
}
