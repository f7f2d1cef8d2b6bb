package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_RecordsBankActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	auditSvc := mocks.NewMockAuditService(ctrl)

	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionInboundTransfer, entry.Action)
		assert.Equal(t, domain.PrincipalBank, entry.ActorType)
		assert.Equal(t, "beta", entry.Actor)
		assert.Equal(t, "pay-1", entry.ResourceID)
	})

	r := gin.New()
	r.Use(AuditLog(auditSvc))
	r.POST("/interbank/transfers",
		withPrincipal(domain.Principal{Type: domain.PrincipalBank, Subject: "beta", Issuer: "beta"}),
		func(c *gin.Context) {
			SetAuditResource(c, "pay-1")
			c.Status(http.StatusOK)
		})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/interbank/transfers", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_UsesRouteParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	auditSvc := mocks.NewMockAuditService(ctrl)

	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionConsentRevoked, entry.Action)
		assert.Equal(t, "c-9", entry.ResourceID)
		assert.Equal(t, "cli-1", entry.Actor)
	})

	r := gin.New()
	r.Use(AuditLog(auditSvc))
	r.DELETE("/account-consents/:id",
		withPrincipal(domain.Principal{Type: domain.PrincipalClient, Subject: "cli-1"}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/account-consents/c-9", nil))
}

func TestAuditLog_SkipsFailuresReadsAndUnknownRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	auditSvc := mocks.NewMockAuditService(ctrl) // no calls expected

	r := gin.New()
	r.Use(AuditLog(auditSvc))
	r.POST("/payments", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
	r.GET("/payments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/multibank/accounts/refresh", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/payments", nil),
		httptest.NewRequest(http.MethodGet, "/payments/p-1", nil),
		httptest.NewRequest(http.MethodPost, "/multibank/accounts/refresh", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
}
