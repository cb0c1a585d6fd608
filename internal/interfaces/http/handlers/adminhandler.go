package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementUC "keygate/internal/application/entitlement/usecases"
	orderUC "keygate/internal/application/order/usecases"
	"keygate/internal/infrastructure/auth"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// AdminHandler serves the token-protected administrative API.
type AdminHandler struct {
	hasher       *auth.BcryptPasswordHasher
	tokens       *auth.AdminTokenService
	passwordHash string

	listOrdersUC      *orderUC.ListOrdersUseCase
	approveOrderUC    *orderUC.ApproveOrderUseCase
	rejectOrderUC     *orderUC.RejectOrderUseCase
	reconcileOrdersUC *orderUC.ReconcileOrdersUseCase

	listKeysUC  *entitlementUC.ListKeysUseCase
	createKeyUC *entitlementUC.CreateKeyUseCase
	revokeKeyUC *entitlementUC.RevokeKeyUseCase

	logger logger.Interface
}

func NewAdminHandler(
	hasher *auth.BcryptPasswordHasher,
	tokens *auth.AdminTokenService,
	passwordHash string,
	listOrdersUC *orderUC.ListOrdersUseCase,
	approveOrderUC *orderUC.ApproveOrderUseCase,
	rejectOrderUC *orderUC.RejectOrderUseCase,
	reconcileOrdersUC *orderUC.ReconcileOrdersUseCase,
	listKeysUC *entitlementUC.ListKeysUseCase,
	createKeyUC *entitlementUC.CreateKeyUseCase,
	revokeKeyUC *entitlementUC.RevokeKeyUseCase,
	log logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		hasher:            hasher,
		tokens:            tokens,
		passwordHash:      passwordHash,
		listOrdersUC:      listOrdersUC,
		approveOrderUC:    approveOrderUC,
		rejectOrderUC:     rejectOrderUC,
		reconcileOrdersUC: reconcileOrdersUC,
		listKeysUC:        listKeysUC,
		createKeyUC:       createKeyUC,
		revokeKeyUC:       revokeKeyUC,
		logger:            log,
	}
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the configured admin password for a short-lived token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	if h.passwordHash == "" {
		utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("admin access is not configured"))
		return
	}

	if err := h.hasher.Verify(req.Password, h.passwordHash); err != nil {
		h.logger.Warnw("failed admin login attempt", "client_ip", c.ClientIP())
		utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("invalid credentials"))
		return
	}

	token, expiresIn, err := h.tokens.Generate()
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewInternalError("failed to issue token", err.Error()))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"token":      token,
		"expires_in": expiresIn,
	})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	page, limit := pagination(c)
	cmd := orderUC.ListOrdersCommand{
		Status: c.Query("status"),
		Email:  c.Query("email"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.listOrdersUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *AdminHandler) ApproveOrder(c *gin.Context) {
	result, err := h.approveOrderUC.Execute(c.Request.Context(), orderUC.ApproveOrderCommand{
		OrderID: c.Param("id"),
		AdminID: adminID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "order approved", result)
}

func (h *AdminHandler) RejectOrder(c *gin.Context) {
	result, err := h.rejectOrderUC.Execute(c.Request.Context(), orderUC.RejectOrderCommand{
		OrderID: c.Param("id"),
		AdminID: adminID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "order rejected", result)
}

type ReconcileRequest struct {
	OrderID    string `json:"order_id"`
	AllPending bool   `json:"all_pending"`
}

func (h *AdminHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}
	if req.OrderID == "" && !req.AllPending {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("order_id or all_pending is required"))
		return
	}

	result, err := h.reconcileOrdersUC.Execute(c.Request.Context(), orderUC.ReconcileOrdersCommand{
		OrderID: req.OrderID,
		AdminID: adminID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "reconciliation completed", result)
}

func (h *AdminHandler) ListKeys(c *gin.Context) {
	page, limit := pagination(c)
	result, err := h.listKeysUC.Execute(c.Request.Context(), entitlementUC.ListKeysCommand{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type CreateKeyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Plan  string `json:"plan" binding:"required"`
}

func (h *AdminHandler) CreateKey(c *gin.Context) {
	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.createKeyUC.Execute(c.Request.Context(), entitlementUC.CreateKeyCommand{
		Email:   req.Email,
		Plan:    req.Plan,
		AdminID: adminID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "access key created")
}

type RevokeKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *AdminHandler) RevokeKey(c *gin.Context) {
	var req RevokeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.revokeKeyUC.Execute(c.Request.Context(), entitlementUC.RevokeKeyCommand{
		Key:     req.Key,
		AdminID: adminID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "access key revoked", result)
}
