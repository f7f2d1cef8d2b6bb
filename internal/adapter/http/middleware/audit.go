package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// Context key a handler sets to name the resource it changed.
const CtxAuditResourceID = "audit_resource_id"

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// Keyed by method and gin route template.
var auditRoutes = map[string]auditRoute{
	"POST /auth/login":                            {domain.AuditActionLogin, "session"},
	"POST /payments":                              {domain.AuditActionPayment, "payment"},
	"POST /interbank/transfers":                   {domain.AuditActionInboundTransfer, "inbound_transfer"},
	"POST /account-consents/request":              {domain.AuditActionConsentRequested, "consent_request"},
	"POST /account-consents/requests/:id/approve": {domain.AuditActionConsentApproved, "consent"},
	"POST /account-consents/requests/:id/reject":  {domain.AuditActionConsentRejected, "consent_request"},
	"DELETE /account-consents/:id":                {domain.AuditActionConsentRevoked, "consent"},
	"POST /multibank/consents":                    {domain.AuditActionPeerConsent, "peer_consent"},
	"DELETE /multibank/consents/:id":              {domain.AuditActionPeerConsent, "peer_consent"},
}

// AuditLog records successful state-changing requests.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		entry := &domain.AuditLog{
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.GetString(CtxAuditResourceID),
			IPAddress:    c.ClientIP(),
		}
		if entry.ResourceID == "" {
			entry.ResourceID = c.Param("id")
		}
		if p, ok := Principal(c); ok {
			entry.ActorType = p.Type
			entry.Actor = p.Subject
			if p.IsBank() {
				entry.Actor = p.Issuer
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})
		entry.Details = string(details)

		auditSvc.Log(c.Request.Context(), entry)
	}
}

// SetAuditResource names the resource the current request produced.
func SetAuditResource(c *gin.Context, id string) {
	c.Set(CtxAuditResourceID, strings.TrimSpace(id))
}
