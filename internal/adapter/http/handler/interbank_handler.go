package handler

import (
	"strings"

	"federated-bank/internal/adapter/http/dto"
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// InterbankHandler receives settlement legs from peer banks.
type InterbankHandler struct {
	settlementSvc ports.SettlementService
}

// NewInterbankHandler creates a new InterbankHandler.
func NewInterbankHandler(settlementSvc ports.SettlementService) *InterbankHandler {
	return &InterbankHandler{settlementSvc: settlementSvc}
}

// AcceptTransfer handles POST /interbank/transfers (bank token). Redelivery
// of a credited payment id answers with the original acknowledgement.
func (h *InterbankHandler) AcceptTransfer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.InboundTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	in, err := h.settlementSvc.AcceptTransfer(c.Request.Context(), p, ports.InboundTransferRequest{
		PaymentID:   req.PaymentID,
		FromBank:    strings.ToLower(req.FromBank),
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditResource(c, in.PaymentID.String())
	response.OK(c, dto.InboundTransferReply{
		PaymentID: in.PaymentID,
		Status:    string(in.Status),
	})
}
