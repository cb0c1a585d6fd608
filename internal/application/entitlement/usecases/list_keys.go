package usecases

import (
	"context"

	"keygate/internal/domain/entitlement"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
)

type ListKeysCommand struct {
	Page  int
	Limit int
}

// KeySummary redacts the token; full keys never appear in listings.
type KeySummary struct {
	MaskedKey      string `json:"key"`
	Email          string `json:"email"`
	Plan           string `json:"plan"`
	PreferredModel string `json:"preferred_model,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	Revoked        bool   `json:"revoked"`
	TotalRequests  uint64 `json:"total_requests"`
	LastUsedAt     string `json:"last_used_at,omitempty"`
	ExpiresAt      string `json:"expires_at"`
	CreatedAt      string `json:"created_at"`
}

type ListKeysResult struct {
	Keys  []KeySummary `json:"keys"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// ListKeysUseCase backs the administrative key listing.
type ListKeysUseCase struct {
	keyRepo entitlement.Repository
}

func NewListKeysUseCase(keyRepo entitlement.Repository) *ListKeysUseCase {
	return &ListKeysUseCase{keyRepo: keyRepo}
}

func (uc *ListKeysUseCase) Execute(ctx context.Context, cmd ListKeysCommand) (*ListKeysResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.Limit < 1 || cmd.Limit > 100 {
		cmd.Limit = 20
	}

	keys, total, err := uc.keyRepo.List(ctx, (cmd.Page-1)*cmd.Limit, cmd.Limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list access keys", err.Error())
	}

	summaries := make([]KeySummary, 0, len(keys))
	for _, k := range keys {
		summary := KeySummary{
			MaskedKey:     k.MaskedKey(),
			Email:         k.Email(),
			Plan:          k.Plan().String(),
			OrderID:       k.OrderID(),
			Revoked:       k.Revoked(),
			TotalRequests: k.TotalRequests(),
			ExpiresAt:     biztime.FormatRFC3339(k.ExpiresAt()),
			CreatedAt:     biztime.FormatRFC3339(k.CreatedAt()),
		}
		if k.PreferredModel() != nil {
			summary.PreferredModel = k.PreferredModel().String()
		}
		if k.LastUsedAt() != nil {
			summary.LastUsedAt = biztime.FormatRFC3339(*k.LastUsedAt())
		}
		summaries = append(summaries, summary)
	}

	return &ListKeysResult{
		Keys:  summaries,
		Total: total,
		Page:  cmd.Page,
		Limit: cmd.Limit,
	}, nil
}
