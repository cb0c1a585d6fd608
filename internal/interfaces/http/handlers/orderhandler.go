package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"keygate/internal/application/order/gateway"
	"keygate/internal/application/order/usecases"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// OrderHandler serves order creation and the payment gateway webhook.
type OrderHandler struct {
	createOrderUC    *usecases.CreateOrderUseCase
	confirmPaymentUC *usecases.ConfirmPaymentUseCase
	gateway          gateway.PaymentGateway
	logger           logger.Interface
}

func NewOrderHandler(
	createOrderUC *usecases.CreateOrderUseCase,
	confirmPaymentUC *usecases.ConfirmPaymentUseCase,
	gw gateway.PaymentGateway,
	log logger.Interface,
) *OrderHandler {
	return &OrderHandler{
		createOrderUC:    createOrderUC,
		confirmPaymentUC: confirmPaymentUC,
		gateway:          gw,
		logger:           log,
	}
}

type CreateOrderRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Plan          string `json:"plan" binding:"required"`
	Referral      string `json:"referral"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	GatewayTxRef  string `json:"gateway_tx_ref"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create order", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	cmd := usecases.CreateOrderCommand{
		Name:          req.Name,
		Email:         req.Email,
		Plan:          req.Plan,
		Referral:      req.Referral,
		PaymentMethod: req.PaymentMethod,
		GatewayTxRef:  req.GatewayTxRef,
	}

	result, err := h.createOrderUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "order created successfully")
}

// PaymentWebhook receives gateway callbacks. The signature is verified
// before anything is parsed or touched; a known-order amount mismatch
// still returns 200 so the gateway stops redelivering an event that will
// never apply.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	event, err := h.gateway.VerifyCallback(c.Request)
	if err != nil {
		h.logger.Warnw("rejected payment webhook",
			"client_ip", c.ClientIP(),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.ConfirmPaymentCommand{
		TransactionRef: event.TransactionRef,
		ReportedAmount: event.Amount,
	}

	result, err := h.confirmPaymentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		if apperrors.HasReason(err, apperrors.ReasonAmountMismatch) {
			h.logger.Warnw("payment amount mismatch, order left pending",
				"transaction_ref", event.TransactionRef,
				"reported_amount", event.Amount,
			)
			utils.SuccessResponse(c, http.StatusOK, "event received", gin.H{
				"applied": false,
				"reason":  apperrors.ReasonAmountMismatch,
			})
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment confirmed", result)
}
