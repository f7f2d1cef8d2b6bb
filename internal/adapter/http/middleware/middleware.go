package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/metrics"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Correlation headers carried on consent-scoped bank calls.
	HeaderConsentID      = "x-consent-id"
	HeaderRequestingBank = "x-requesting-bank"
	HeaderRequestID      = "X-Request-ID"

	// Context keys
	CtxPrincipal = "principal"
	CtxConsentID = "consent_id"
)

// Principal returns the caller authenticated by BearerAuth.
func Principal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// ConsentID returns the consent id parsed by RequireCorrelation.
func ConsentID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CtxConsentID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// BearerAuth verifies the Authorization header as either a client or a bank token.
func BearerAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenStr) == "" {
			response.Error(c, apperror.ErrMalformedToken())
			c.Abort()
			return
		}

		principal, err := tokenSvc.VerifyToken(c.Request.Context(), strings.TrimSpace(tokenStr))
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("token rejected")
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxPrincipal, *principal)
		c.Next()
	}
}

// RequireClient admits client tokens only.
func RequireClient() gin.HandlerFunc {
	return requireType(domain.PrincipalClient)
}

// RequireBank admits bank tokens only.
func RequireBank() gin.HandlerFunc {
	return requireType(domain.PrincipalBank)
}

func requireType(want domain.PrincipalType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok || p.Type != want {
			response.Error(c, apperror.ErrWrongPrincipal(string(want)))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCorrelation enforces the consent headers on bank calls. Client
// calls pass through untouched. The requesting bank must be the token issuer.
func RequireCorrelation() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok || !p.IsBank() {
			c.Next()
			return
		}

		rawConsent := strings.TrimSpace(c.GetHeader(HeaderConsentID))
		if rawConsent == "" {
			response.Error(c, apperror.ErrMissingCorrelation(HeaderConsentID))
			c.Abort()
			return
		}
		bank := strings.TrimSpace(c.GetHeader(HeaderRequestingBank))
		if bank == "" {
			response.Error(c, apperror.ErrMissingCorrelation(HeaderRequestingBank))
			c.Abort()
			return
		}
		if !strings.EqualFold(bank, p.Issuer) {
			response.Error(c, apperror.ErrSignatureMismatch())
			c.Abort()
			return
		}
		consentID, err := uuid.Parse(rawConsent)
		if err != nil {
			response.Error(c, apperror.ErrConsentNotFound())
			c.Abort()
			return
		}

		c.Set(CtxConsentID, consentID)
		c.Next()
	}
}

// RequestID propagates or assigns X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(response.CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		if p, ok := Principal(c); ok {
			event = event.Str("principal_type", string(p.Type)).Str("principal", p.Subject)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", response.RequestID(c)).
			Msg("http request")
	}
}

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.InternalError(nil))
				c.Abort()
			}
		}()
		c.Next()
	}
}
