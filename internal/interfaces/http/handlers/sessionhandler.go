package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"keygate/internal/application/session/usecases"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// SessionHandler serves the session lifecycle: start, heartbeat, end.
type SessionHandler struct {
	startSessionUC     *usecases.StartSessionUseCase
	heartbeatSessionUC *usecases.HeartbeatSessionUseCase
	endSessionUC       *usecases.EndSessionUseCase
	logger             logger.Interface
}

func NewSessionHandler(
	startSessionUC *usecases.StartSessionUseCase,
	heartbeatSessionUC *usecases.HeartbeatSessionUseCase,
	endSessionUC *usecases.EndSessionUseCase,
	log logger.Interface,
) *SessionHandler {
	return &SessionHandler{
		startSessionUC:     startSessionUC,
		heartbeatSessionUC: heartbeatSessionUC,
		endSessionUC:       endSessionUC,
		logger:             log,
	}
}

type StartSessionRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.startSessionUC.Execute(c.Request.Context(), usecases.StartSessionCommand{Key: req.Key})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session started", result)
}

type SessionIDRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Heartbeat refreshes liveness. 404 with reason session_not_found tells
// the client it was displaced or reclaimed and must stop.
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	var req SessionIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.heartbeatSessionUC.Execute(c.Request.Context(), usecases.HeartbeatSessionCommand{SessionID: req.SessionID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	var req SessionIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.endSessionUC.Execute(c.Request.Context(), usecases.EndSessionCommand{SessionID: req.SessionID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session ended", result)
}
