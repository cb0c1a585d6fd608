package usecases

import (
	"context"
	"fmt"

	"keygate/internal/application/notification"
	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/order"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/db"
	"keygate/internal/shared/logger"
)

// KeyIssuer performs the pending-to-approved transition and key creation
// as one atomic unit. Both the gateway confirmation path and the manual
// approval path funnel through here so idempotency lives in one place.
type KeyIssuer struct {
	orderRepo    order.Repository
	keyRepo      entitlement.Repository
	txManager    *db.TransactionManager
	notifier     *notification.Notifier
	adminAddress string
	logger       logger.Interface
}

func NewKeyIssuer(
	orderRepo order.Repository,
	keyRepo entitlement.Repository,
	txManager *db.TransactionManager,
	notifier *notification.Notifier,
	adminAddress string,
	log logger.Interface,
) *KeyIssuer {
	return &KeyIssuer{
		orderRepo:    orderRepo,
		keyRepo:      keyRepo,
		txManager:    txManager,
		notifier:     notifier,
		adminAddress: adminAddress,
		logger:       log,
	}
}

// IssueResult reports what an issuance attempt did.
type IssueResult struct {
	Issued    bool
	KeyToken  string
	ExpiresAt string
}

// Issue approves the order and creates its access key. When the order is
// no longer pending the call is a no-op reporting Issued=false, which is
// how duplicate confirmations resolve. Key-delivery email is attempted
// after the transaction commits; its failure never fails the issuance.
func (i *KeyIssuer) Issue(ctx context.Context, o *order.Order) (*IssueResult, error) {
	key, err := entitlement.NewAccessKey(o.Email(), o.Plan(), o.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to build access key: %w", err)
	}

	won := false
	err = i.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		won, txErr = i.orderRepo.ApprovePending(txCtx, o.ID(), key.Key(), biztime.NowUTC())
		if txErr != nil {
			return txErr
		}
		if !won {
			// lost the race or already terminal; nothing to persist
			return nil
		}
		return i.keyRepo.Create(txCtx, key)
	})
	if err != nil {
		return nil, err
	}

	if !won {
		i.logger.Infow("order already handled, skipping issuance",
			"order_id", o.ID(),
		)
		return &IssueResult{Issued: false}, nil
	}

	i.logger.Infow("access key issued",
		"order_id", o.ID(),
		"plan", o.Plan().String(),
		"key", key.MaskedKey(),
	)

	i.notifier.DeliverKey(ctx, o.ID(), o.Email(), o.Name(), key.Key(),
		o.Plan().String(), key.ExpiresAt())

	return &IssueResult{
		Issued:    true,
		KeyToken:  key.Key(),
		ExpiresAt: biztime.FormatRFC3339(key.ExpiresAt()),
	}, nil
}
