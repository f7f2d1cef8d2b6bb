// Package app wires one bank of the federation from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"federated-bank/config"
	httpHandler "federated-bank/internal/adapter/http/handler"
	"federated-bank/internal/adapter/peer"
	"federated-bank/internal/adapter/storage/memory"
	pgStorage "federated-bank/internal/adapter/storage/postgres"
	redisStorage "federated-bank/internal/adapter/storage/redis"
	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/internal/service"
	"federated-bank/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// storage is the persistence surface one driver provides.
type storage struct {
	clients      ports.ClientRepository
	accounts     ports.AccountRepository
	ledger       ports.LedgerRepository
	capital      ports.CapitalRepository
	consents     ports.ConsentRepository
	peerConsents ports.PeerConsentRepository
	payments     ports.PaymentRepository
	inbound      ports.InboundTransferRepository
	audit        ports.AuditRepository
	transactor   ports.DBTransactor

	paymentCache ports.IdempotencyCache
	inboundCache ports.IdempotencyCache
	aggCache     ports.AggregateCache
	rateLimit    ports.RateLimitStore

	health  []ports.HealthChecker
	closers []func()
}

// App is a fully wired bank.
type App struct {
	Router   *gin.Engine
	Payments *service.PaymentServiceImpl

	cfg   *config.Config
	audit *service.AuditServiceImpl
	store *storage
	log   zerolog.Logger
}

// HTTPClient is used for every outbound peer call. Per-call deadlines come
// from the services; Timeout is only a backstop.
var HTTPClient peer.HTTPClient = &http.Client{Timeout: 30 * time.Second}

// New connects storage, seeds reference data and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	bankCode := strings.ToLower(cfg.Bank.Code)

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, store: st, log: log}

	signingKey, err := service.LoadSigningKey(cfg.Bank.SigningKeyPath, log)
	if err != nil {
		a.closeStorage()
		return nil, err
	}

	directory := peer.NewDirectory(cfg.Federation.Peers)
	peerClient := peer.NewClient(HTTPClient, bankCode, logger.Component(log, "peer_client", bankCode))
	trust := service.NewTrustRegistry(directory, peer.NewKeySetFetcher(HTTPClient), service.TrustConfig{
		TTL:                cfg.Federation.TrustTTL,
		MinRefreshInterval: cfg.Federation.MinRefreshInterval,
		FetchTimeout:       cfg.Federation.RemoteTimeout,
	}, logger.Component(log, "trust", bankCode))
	tokenSvc := service.NewJWTTokenService(service.TokenConfig{
		BankCode:     bankCode,
		ClientSecret: cfg.JWT.Secret,
		ClientExpiry: cfg.JWT.Expiry,
		BankExpiry:   cfg.JWT.BankTokenExpiry,
		SigningKey:   signingKey,
		KeyID:        cfg.Bank.SigningKeyID(),
	}, trust)

	hashSvc := service.NewArgon2HashService(service.Argon2Params{
		Time:    cfg.Auth.Argon2.Time,
		Memory:  cfg.Auth.Argon2.Memory,
		Threads: cfg.Auth.Argon2.Threads,
	})
	authSvc := service.NewAuthService(st.clients, hashSvc, tokenSvc, logger.Component(log, "auth", bankCode))

	capital := service.NewCapitalLedger(st.capital, logger.Component(log, "capital", bankCode))
	consentSvc := service.NewConsentService(st.consents, st.clients, st.transactor, service.ConsentConfig{
		Horizon:     cfg.Consent.Horizon,
		AutoApprove: cfg.Consent.AutoApprove,
	}, logger.Component(log, "consent", bankCode))
	peerConsentSvc := service.NewPeerConsentService(st.peerConsents, st.clients, directory, peerClient, tokenSvc,
		bankCode, logger.Component(log, "peer_consent", bankCode))
	accountSvc := service.NewAccountService(st.accounts, st.ledger, consentSvc, logger.Component(log, "accounts", bankCode))

	a.Payments = service.NewPaymentService(service.PaymentDeps{
		Accounts:    st.accounts,
		Ledger:      st.ledger,
		Payments:    st.payments,
		Capital:     capital,
		Consents:    consentSvc,
		ConsentRepo: st.consents,
		Directory:   directory,
		Peers:       peerClient,
		Tokens:      tokenSvc,
		Cache:       st.paymentCache,
		Transactor:  st.transactor,
	}, service.PaymentConfig{
		BankCode:      bankCode,
		RemoteTimeout: cfg.Federation.RemoteTimeout,
		RetryDelay:    cfg.Federation.RetryDelay,
	}, logger.Component(log, "payments", bankCode))

	settlementSvc := service.NewSettlementService(st.accounts, st.ledger, st.inbound, capital, st.inboundCache,
		st.transactor, logger.Component(log, "settlement", bankCode))
	aggCache := st.aggCache
	if cfg.Aggregator.CacheTTL <= 0 {
		aggCache = memory.NoopAggregateCache{}
	}
	aggregatorSvc := service.NewAggregatorService(st.peerConsents, directory, peerClient, tokenSvc, aggCache,
		service.AggregatorConfig{
			CacheTTL:       cfg.Aggregator.CacheTTL,
			PeerTimeout:    cfg.Aggregator.PeerTimeout,
			MaxConcurrency: cfg.Aggregator.MaxConcurrency,
		}, logger.Component(log, "aggregator", bankCode))

	initial, err := cfg.Capital.Initial()
	if err != nil {
		a.closeStorage()
		return nil, err
	}
	if err := capital.SeedPositions(ctx, directory.All(), initial); err != nil {
		a.closeStorage()
		return nil, err
	}
	if err := seedClients(ctx, cfg.Seed, st, hashSvc, log); err != nil {
		a.closeStorage()
		return nil, err
	}

	a.audit = service.NewAuditService(st.audit, 0, logger.Component(log, "audit", bankCode))

	var rateLimit ports.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimit = st.rateLimit
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	a.Router = httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		ConsentSvc:     consentSvc,
		PeerConsentSvc: peerConsentSvc,
		AccountSvc:     accountSvc,
		PaymentSvc:     a.Payments,
		SettlementSvc:  settlementSvc,
		AggregatorSvc:  aggregatorSvc,
		RateLimitStore: rateLimit,
		AuditSvc:       a.audit,
		HealthCheckers: st.health,
		Logger:         log,
	})
	return a, nil
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	}
	return gin.ReleaseMode
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		s := memory.NewStore()
		log.Warn().Msg("memory storage driver selected, state is lost on restart")
		return &storage{
			clients:      memory.NewClientRepo(s),
			accounts:     memory.NewAccountRepo(s),
			ledger:       memory.NewLedgerRepo(s),
			capital:      memory.NewCapitalRepo(s),
			consents:     memory.NewConsentRepo(s),
			peerConsents: memory.NewPeerConsentRepo(s),
			payments:     memory.NewPaymentRepo(s),
			inbound:      memory.NewInboundRepo(s),
			audit:        memory.NewAuditRepo(s),
			transactor:   s,
			paymentCache: memory.NewIdempotencyCache(),
			inboundCache: memory.NewIdempotencyCache(),
			aggCache:     memory.NewAggregateCache(),
			rateLimit:    memory.NewRateLimitStore(),
			health:       []ports.HealthChecker{s},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &storage{
		clients:      pgStorage.NewClientRepo(pool),
		accounts:     pgStorage.NewAccountRepo(pool),
		ledger:       pgStorage.NewLedgerRepo(pool),
		capital:      pgStorage.NewCapitalRepo(pool),
		consents:     pgStorage.NewConsentRepo(pool),
		peerConsents: pgStorage.NewPeerConsentRepo(pool),
		payments:     pgStorage.NewPaymentRepo(pool),
		inbound:      pgStorage.NewInboundRepo(pool),
		audit:        pgStorage.NewAuditRepo(pool),
		transactor:   pgStorage.NewTransactor(pool),
		paymentCache: redisStorage.NewIdempotencyCache(rdb, "payment"),
		inboundCache: redisStorage.NewIdempotencyCache(rdb, "inbound"),
		aggCache:     redisStorage.NewAggregateCache(rdb),
		rateLimit:    redisStorage.NewRateLimitStore(rdb),
		health:       []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		closers:      []func(){func() { _ = rdb.Close() }, pool.Close},
	}, nil
}

// seedClients creates configured clients and accounts that do not exist yet.
// Existing rows are left untouched, so balances survive restarts.
func seedClients(ctx context.Context, seed config.SeedConfig, st *storage, hashSvc ports.HashService, log zerolog.Logger) error {
	for _, sc := range seed.Clients {
		existing, err := st.clients.GetByID(ctx, sc.ID)
		if err != nil {
			return fmt.Errorf("seed client %s: %w", sc.ID, err)
		}
		if existing == nil {
			hash := ""
			if sc.Password != "" {
				if hash, err = hashSvc.Hash(sc.Password); err != nil {
					return fmt.Errorf("hash password of %s: %w", sc.ID, err)
				}
			}
			err = st.clients.Create(ctx, &domain.Client{ID: sc.ID, Name: sc.Name, PasswordHash: hash, CreatedAt: time.Now().UTC()})
			if err != nil && !errors.Is(err, ports.ErrAlreadyExists) {
				return fmt.Errorf("seed client %s: %w", sc.ID, err)
			}
		}

		for _, sa := range sc.Accounts {
			acc, err := st.accounts.GetByNumber(ctx, sa.Number)
			if err != nil {
				return fmt.Errorf("seed account %s: %w", sa.Number, err)
			}
			if acc != nil {
				continue
			}
			balance, err := decimal.NewFromString(sa.Balance)
			if err != nil {
				return fmt.Errorf("seed account %s balance: %w", sa.Number, err)
			}
			currency := strings.ToUpper(sa.Currency)
			if currency == "" {
				currency = "RUB"
			}
			now := time.Now().UTC()
			err = st.accounts.Create(ctx, &domain.Account{
				Number:    sa.Number,
				ClientID:  sc.ID,
				Name:      sa.Name,
				Balance:   balance,
				Currency:  currency,
				Status:    domain.AccountStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil && !errors.Is(err, ports.ErrAlreadyExists) {
				return fmt.Errorf("seed account %s: %w", sa.Number, err)
			}
		}
		log.Info().Str("client_id", sc.ID).Int("accounts", len(sc.Accounts)).Msg("client seeded")
	}
	return nil
}

// RunReconciler re-drives stale interbank payments until ctx ends.
func (a *App) RunReconciler(ctx context.Context) {
	rc := a.cfg.Reconciler
	if !rc.Enabled || rc.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(rc.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Payments.ReconcilePending(ctx, rc.StaleAfter)
			if err != nil {
				a.log.Error().Err(err).Msg("reconciler pass failed")
				continue
			}
			if n > 0 {
				a.log.Info().Int("payments", n).Msg("reconciler re-drove stale transfers")
			}
		}
	}
}

// Close drains the audit queue and releases storage connections.
func (a *App) Close(ctx context.Context) {
	if a.audit != nil {
		if err := a.audit.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("audit queue not drained")
		}
	}
	a.closeStorage()
}

func (a *App) closeStorage() {
	for i := len(a.store.closers) - 1; i >= 0; i-- {
		a.store.closers[i]()
	}
}
