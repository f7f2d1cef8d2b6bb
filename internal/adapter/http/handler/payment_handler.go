package handler

import (
	"errors"
	"strings"

	"federated-bank/internal/adapter/http/dto"
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment initiation and lookup.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Initiate handles POST /payments. A bank caller names its consent in the
// body or in the x-consent-id header.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	consentID := req.ConsentID
	if consentID == nil && p.IsBank() {
		if raw := strings.TrimSpace(c.GetHeader(middleware.HeaderConsentID)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(c, apperror.ErrConsentNotFound())
				return
			}
			consentID = &id
		}
	}

	payment, err := h.paymentSvc.InitiatePayment(c.Request.Context(), ports.PaymentRequest{
		PaymentID:   req.PaymentID,
		Principal:   p,
		ConsentID:   consentID,
		FromAccount: req.FromAccount,
		ToBank:      strings.ToLower(req.ToBank),
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		var appErr *apperror.AppError
		if payment != nil && errors.As(err, &appErr) {
			response.ErrorWithData(c, err, payment)
			return
		}
		response.Error(c, err)
		return
	}

	middleware.SetAuditResource(c, payment.ID.String())
	response.Created(c, payment)
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrNotFound("payment"))
	if !ok {
		return
	}

	payment, err := h.paymentSvc.GetPayment(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}
