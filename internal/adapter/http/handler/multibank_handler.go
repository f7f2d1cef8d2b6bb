package handler

import (
	"federated-bank/internal/adapter/http/dto"
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// MultibankHandler lets a local client reach its accounts at peer banks.
type MultibankHandler struct {
	peerConsentSvc ports.PeerConsentService
	aggregatorSvc  ports.AggregatorService
}

// NewMultibankHandler creates a new MultibankHandler.
func NewMultibankHandler(peerConsentSvc ports.PeerConsentService, aggregatorSvc ports.AggregatorService) *MultibankHandler {
	return &MultibankHandler{peerConsentSvc: peerConsentSvc, aggregatorSvc: aggregatorSvc}
}

// RequestConsent handles POST /multibank/consents.
func (h *MultibankHandler) RequestConsent(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.PeerConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	pc, err := h.peerConsentSvc.RequestPeerConsent(c.Request.Context(), ports.PeerConsentInput{
		ClientID:     p.Subject,
		BankCode:     req.BankCode,
		PeerClientID: req.PeerClientID,
		Permissions:  req.Permissions,
		Reason:       req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditResource(c, pc.ID.String())
	response.Created(c, pc)
}

// ListConsents handles GET /multibank/consents.
func (h *MultibankHandler) ListConsents(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	held, err := h.peerConsentSvc.HeldConsents(c.Request.Context(), p.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	if held == nil {
		held = []domain.PeerConsent{}
	}
	response.OK(c, held)
}

// Sync handles POST /multibank/consents/:id/sync.
func (h *MultibankHandler) Sync(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentNotFound())
	if !ok {
		return
	}

	pc, err := h.peerConsentSvc.SyncPeerConsent(c.Request.Context(), p.Subject, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pc)
}

// MarkRevoked handles DELETE /multibank/consents/:id.
func (h *MultibankHandler) MarkRevoked(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentNotFound())
	if !ok {
		return
	}

	if err := h.peerConsentSvc.MarkPeerConsentRevoked(c.Request.Context(), p.Subject, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": domain.PeerConsentRevoked})
}

// Accounts handles GET /multibank/accounts.
func (h *MultibankHandler) Accounts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	agg, err := h.aggregatorSvc.ListExternalAccounts(c.Request.Context(), p.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, agg)
}

// Refresh handles POST /multibank/accounts/refresh.
func (h *MultibankHandler) Refresh(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	agg, err := h.aggregatorSvc.Refresh(c.Request.Context(), p.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, agg)
}
