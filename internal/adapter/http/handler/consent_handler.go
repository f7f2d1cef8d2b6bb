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

// ConsentHandler serves the consent registry: peers open and poll requests,
// local clients decide and revoke.
type ConsentHandler struct {
	consentSvc ports.ConsentService
}

// NewConsentHandler creates a new ConsentHandler.
func NewConsentHandler(consentSvc ports.ConsentService) *ConsentHandler {
	return &ConsentHandler{consentSvc: consentSvc}
}

// Request handles POST /account-consents/request (bank token).
func (h *ConsentHandler) Request(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req dto.ConsentRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	if req.RequestingBank != "" && req.RequestingBank != p.Issuer {
		response.Error(c, apperror.ErrSignatureMismatch())
		return
	}

	cr, err := h.consentSvc.RequestConsent(c.Request.Context(), ports.ConsentRequestInput{
		ClientID:       req.ClientID,
		RequestingBank: p.Issuer,
		Permissions:    req.Permissions,
		Reason:         req.Reason,
		Limits:         req.Limits,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditResource(c, cr.ID.String())
	response.Created(c, toRequestReply(cr))
}

// GetRequest handles GET /account-consents/requests/:id (bank token).
func (h *ConsentHandler) GetRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentRequestNotFound())
	if !ok {
		return
	}

	cr, err := h.consentSvc.GetRequest(c.Request.Context(), p.Issuer, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toRequestReply(cr))
}

// ListPending handles GET /account-consents/requests (client token).
func (h *ConsentHandler) ListPending(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	reqs, err := h.consentSvc.ListPendingRequests(c.Request.Context(), p.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	if reqs == nil {
		reqs = []domain.ConsentRequest{}
	}
	response.OK(c, reqs)
}

// Approve handles POST /account-consents/requests/:id/approve (client token).
func (h *ConsentHandler) Approve(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentRequestNotFound())
	if !ok {
		return
	}

	consent, err := h.consentSvc.Approve(c.Request.Context(), p.Subject, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, consent.ID.String())
	response.Created(c, consent)
}

// Reject handles POST /account-consents/requests/:id/reject (client token).
func (h *ConsentHandler) Reject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentRequestNotFound())
	if !ok {
		return
	}

	cr, err := h.consentSvc.Reject(c.Request.Context(), p.Subject, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cr)
}

// List handles GET /account-consents (client token).
func (h *ConsentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	consents, err := h.consentSvc.ListConsents(c.Request.Context(), p.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	if consents == nil {
		consents = []domain.Consent{}
	}
	response.OK(c, consents)
}

// Revoke handles DELETE /account-consents/:id (client token).
func (h *ConsentHandler) Revoke(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, apperror.ErrConsentNotFound())
	if !ok {
		return
	}

	consent, err := h.consentSvc.Revoke(c.Request.Context(), p.Subject, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, consent)
}

func toRequestReply(cr *domain.ConsentRequest) dto.ConsentRequestReply {
	return dto.ConsentRequestReply{
		RequestID: cr.ID,
		Status:    string(cr.Status),
		ConsentID: cr.ConsentID,
	}
}
