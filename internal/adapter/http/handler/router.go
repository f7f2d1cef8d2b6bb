package handler

import (
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	ConsentSvc     ports.ConsentService
	PeerConsentSvc ports.PeerConsentService
	AccountSvc     ports.AccountService
	PaymentSvc     ports.PaymentService
	SettlementSvc  ports.SettlementService
	AggregatorSvc  ports.AggregatorService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	AuditSvc       ports.AuditService   // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 1 << 20
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(deps.AuthSvc, deps.TokenSvc)
	r.GET("/.well-known/jwks.json", authHandler.KeySet)

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	r.POST("/auth/login", rl("auth_login"), authHandler.Login)

	authn := middleware.BearerAuth(deps.TokenSvc, deps.Logger)
	clientOnly := middleware.RequireClient()
	bankOnly := middleware.RequireBank()

	// --- Consent registry ---
	consentHandler := NewConsentHandler(deps.ConsentSvc)
	consents := r.Group("/account-consents", authn, rl("consents"))
	{
		consents.POST("/request", bankOnly, consentHandler.Request)
		consents.GET("/requests/:id", bankOnly, consentHandler.GetRequest)
		consents.GET("/requests", clientOnly, consentHandler.ListPending)
		consents.POST("/requests/:id/approve", clientOnly, consentHandler.Approve)
		consents.POST("/requests/:id/reject", clientOnly, consentHandler.Reject)
		consents.GET("", clientOnly, consentHandler.List)
		consents.DELETE("/:id", clientOnly, consentHandler.Revoke)
	}

	// --- Account data (owner, or peer bank under consent) ---
	accountHandler := NewAccountHandler(deps.AccountSvc)
	accounts := r.Group("/accounts", authn, middleware.RequireCorrelation(), rl("accounts"))
	{
		accounts.GET("", accountHandler.List)
		accounts.GET("/:id/balances", accountHandler.Balance)
		accounts.GET("/:id/transactions", accountHandler.Transactions)
	}

	// --- Payments ---
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := r.Group("/payments", authn, rl("payments"))
	{
		payments.POST("", paymentHandler.Initiate)
		payments.GET("/:id", paymentHandler.Get)
	}

	interbankHandler := NewInterbankHandler(deps.SettlementSvc)
	r.POST("/interbank/transfers", authn, bankOnly, rl("interbank"), interbankHandler.AcceptTransfer)

	// --- Multibank aggregation ---
	multibankHandler := NewMultibankHandler(deps.PeerConsentSvc, deps.AggregatorSvc)
	multibank := r.Group("/multibank", authn, clientOnly, rl("multibank"))
	{
		multibank.POST("/consents", multibankHandler.RequestConsent)
		multibank.GET("/consents", multibankHandler.ListConsents)
		multibank.POST("/consents/:id/sync", multibankHandler.Sync)
		multibank.DELETE("/consents/:id", multibankHandler.MarkRevoked)
		multibank.GET("/accounts", multibankHandler.Accounts)
		multibank.POST("/accounts/refresh", multibankHandler.Refresh)
	}

	return r
}
