package handler

import (
	"net/http"

	"federated-bank/internal/adapter/http/dto"
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles client login and the published key set.
type AuthHandler struct {
	authSvc  ports.AuthService
	tokenSvc ports.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService, tokenSvc ports.TokenService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, tokenSvc: tokenSvc}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.ClientID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditResource(c, req.ClientID)
	response.OK(c, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiry.Unix(),
	})
}

// KeySet handles GET /.well-known/jwks.json. Peers read it bare, without
// the response envelope.
func (h *AuthHandler) KeySet(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, h.tokenSvc.PublishedKeySet())
}

// HealthCheck handles GET /health, verifying every dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
