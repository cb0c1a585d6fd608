package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keygate/internal/application/entitlement/usecases"
	"keygate/internal/domain/entitlement"
	"keygate/internal/infrastructure/ratelimit"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// AccessHandler serves the client-facing key endpoints: validation at
// login, per-request access evaluation, and model preference updates.
type AccessHandler struct {
	validateKeyUC       *usecases.ValidateKeyUseCase
	evaluateAccessUC    *usecases.EvaluateAccessUseCase
	setPreferredModelUC *usecases.SetPreferredModelUseCase
	keyRepo             entitlement.Repository
	limiter             ratelimit.RateLimiter
	meteredLimit        ratelimit.Limit
	logger              logger.Interface
}

func NewAccessHandler(
	validateKeyUC *usecases.ValidateKeyUseCase,
	evaluateAccessUC *usecases.EvaluateAccessUseCase,
	setPreferredModelUC *usecases.SetPreferredModelUseCase,
	keyRepo entitlement.Repository,
	limiter ratelimit.RateLimiter,
	requestsPerHour int,
	log logger.Interface,
) *AccessHandler {
	return &AccessHandler{
		validateKeyUC:       validateKeyUC,
		evaluateAccessUC:    evaluateAccessUC,
		setPreferredModelUC: setPreferredModelUC,
		keyRepo:             keyRepo,
		limiter:             limiter,
		meteredLimit:        ratelimit.Limit{Requests: requestsPerHour, Window: time.Hour},
		logger:              log,
	}
}

type ValidateKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// ValidateKey is the login-time check. Denials are part of the result
// body, not HTTP errors, so clients branch on one shape.
func (h *AccessHandler) ValidateKey(c *gin.Context) {
	var req ValidateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.validateKeyUC.Execute(c.Request.Context(), usecases.ValidateKeyCommand{Key: req.Key})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type EvaluateAccessRequest struct {
	Key              string  `json:"key" binding:"required"`
	Model            string  `json:"model"`
	SessionStartedAt *string `json:"session_started_at"`
}

// EvaluateAccess is the metered per-request gate. It is rate limited per
// key and bumps the key's usage counters on a pass; the evaluation
// itself never writes.
func (h *AccessHandler) EvaluateAccess(c *gin.Context) {
	var req EvaluateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), fmt.Sprintf("key:%s", req.Key), h.meteredLimit)
		if err != nil {
			// limiter outage fails open; losing rate limiting beats
			// losing the product
			h.logger.Warnw("rate limiter unavailable", "error", err)
		} else if !allowed {
			utils.ErrorResponseWithError(c, apperrors.NewRateLimitedError("request limit reached, try again later"))
			return
		}
	}

	cmd := usecases.EvaluateAccessCommand{
		Key:            req.Key,
		RequestedModel: req.Model,
	}
	if req.SessionStartedAt != nil {
		startedAt, err := biztime.ParseRFC3339(*req.SessionStartedAt)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid session_started_at timestamp"))
			return
		}
		cmd.SessionStartedAt = &startedAt
	}

	result, err := h.evaluateAccessUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.keyRepo.RecordUsage(ctx, req.Key); err != nil {
			h.logger.Warnw("failed to record key usage", "error", err)
		}
	}()

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type SetPreferenceRequest struct {
	Key   string `json:"key" binding:"required"`
	Model string `json:"model" binding:"required"`
}

func (h *AccessHandler) SetPreference(c *gin.Context) {
	var req SetPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.setPreferredModelUC.Execute(c.Request.Context(), usecases.SetPreferredModelCommand{
		Key:   req.Key,
		Model: req.Model,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "preference updated", result)
}
