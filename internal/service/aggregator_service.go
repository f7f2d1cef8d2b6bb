package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AggregatorConfig bounds the multibank fan-out.
type AggregatorConfig struct {
	CacheTTL       time.Duration
	PeerTimeout    time.Duration
	MaxConcurrency int
}

// AggregatorServiceImpl implements ports.AggregatorService. It reads a
// client's accounts at every peer bank holding a usable consent.
type AggregatorServiceImpl struct {
	peerConsents ports.PeerConsentRepository
	directory    ports.PeerDirectory
	peers        ports.PeerClient
	tokens       ports.TokenService
	cache        ports.AggregateCache
	cfg          AggregatorConfig
	now          func() time.Time
	log          zerolog.Logger
}

// NewAggregatorService creates a new AggregatorServiceImpl.
func NewAggregatorService(
	peerConsents ports.PeerConsentRepository,
	directory ports.PeerDirectory,
	peers ports.PeerClient,
	tokens ports.TokenService,
	cache ports.AggregateCache,
	cfg AggregatorConfig,
	log zerolog.Logger,
) *AggregatorServiceImpl {
	if cfg.PeerTimeout <= 0 {
		cfg.PeerTimeout = 5 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	return &AggregatorServiceImpl{
		peerConsents: peerConsents,
		directory:    directory,
		peers:        peers,
		tokens:       tokens,
		cache:        cache,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

type aggregateTarget struct {
	peer    domain.Peer
	consent domain.PeerConsent
}

// ListExternalAccounts serves the aggregated view from cache when every
// peer entry is cached, and fetches every peer otherwise.
func (s *AggregatorServiceImpl) ListExternalAccounts(ctx context.Context, clientID string) (*domain.AggregatedAccounts, error) {
	targets, err := s.targets(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return &domain.AggregatedAccounts{ClientID: clientID, Banks: []domain.BankAccounts{}}, nil
	}

	if banks, ok := s.fromCache(ctx, targets); ok {
		metrics.AggregatorCache.WithLabelValues("hit").Inc()
		return &domain.AggregatedAccounts{ClientID: clientID, Banks: banks, FromCache: true}, nil
	}
	metrics.AggregatorCache.WithLabelValues("miss").Inc()
	return s.fetchAll(ctx, clientID, targets)
}

// Refresh drops the cached entries of the client and fetches every peer.
func (s *AggregatorServiceImpl) Refresh(ctx context.Context, clientID string) (*domain.AggregatedAccounts, error) {
	targets, err := s.targets(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if err := s.cache.Delete(ctx, t.peer.Code, t.consent.PeerConsentID); err != nil {
			s.log.Warn().Err(err).Str("bank_code", t.peer.Code).Msg("failed to drop cached accounts")
		}
	}
	if len(targets) == 0 {
		return &domain.AggregatedAccounts{ClientID: clientID, Banks: []domain.BankAccounts{}}, nil
	}
	return s.fetchAll(ctx, clientID, targets)
}

func (s *AggregatorServiceImpl) targets(ctx context.Context, clientID string) ([]aggregateTarget, error) {
	held, err := s.peerConsents.ListByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list peer consents: %w", err))
	}
	now := s.now()
	out := make([]aggregateTarget, 0, len(held))
	for _, pc := range held {
		if !pc.Readable(now) {
			continue
		}
		peer, ok := s.directory.Lookup(pc.BankCode)
		if !ok {
			continue
		}
		out = append(out, aggregateTarget{peer: peer, consent: pc})
	}
	return out, nil
}

// fromCache returns the cached entries only if every target is cached.
func (s *AggregatorServiceImpl) fromCache(ctx context.Context, targets []aggregateTarget) ([]domain.BankAccounts, bool) {
	banks := make([]domain.BankAccounts, 0, len(targets))
	for _, t := range targets {
		entry, err := s.cache.Get(ctx, t.peer.Code, t.consent.PeerConsentID)
		if err != nil {
			s.log.Warn().Err(err).Str("bank_code", t.peer.Code).Msg("aggregate cache read failed")
			return nil, false
		}
		if entry == nil {
			return nil, false
		}
		banks = append(banks, *entry)
	}
	return banks, true
}

// fetchAll calls every peer concurrently, each under its own deadline. A
// failing peer becomes an error entry and never fails the whole read.
func (s *AggregatorServiceImpl) fetchAll(ctx context.Context, clientID string, targets []aggregateTarget) (*domain.AggregatedAccounts, error) {
	token, _, err := s.tokens.IssueBankToken()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue bank token: %w", err))
	}

	banks := make([]domain.BankAccounts, len(targets))
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, t := range targets {
		g.Go(func() error {
			banks[i] = s.fetchOne(ctx, token, t)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range banks {
		if banks[i].Failed() {
			failed++
			continue
		}
		if err := s.cache.Set(ctx, &banks[i], s.cfg.CacheTTL); err != nil {
			s.log.Warn().Err(err).Str("bank_code", banks[i].BankCode).Msg("failed to cache accounts")
		}
	}

	s.log.Info().
		Str("client_id", clientID).
		Int("peers", len(targets)).
		Int("failed", failed).
		Msg("multibank accounts fetched")
	return &domain.AggregatedAccounts{ClientID: clientID, Banks: banks}, nil
}

func (s *AggregatorServiceImpl) fetchOne(ctx context.Context, token string, t aggregateTarget) domain.BankAccounts {
	entry := domain.BankAccounts{BankCode: t.peer.Code, ConsentID: t.consent.PeerConsentID}

	peerCtx, cancel := context.WithTimeout(ctx, s.cfg.PeerTimeout)
	defer cancel()

	accounts, err := s.peers.ListAccounts(peerCtx, t.peer, token, t.consent.PeerConsentID)
	entry.FetchedAt = s.now()
	if err == nil {
		if accounts == nil {
			accounts = []domain.AccountView{}
		}
		entry.Accounts = accounts
		return entry
	}

	var peerErr *ports.PeerError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(peerCtx.Err(), context.DeadlineExceeded):
		entry.Error = "peer did not answer in time"
		entry.ErrorCode = apperror.ErrPeerUnavailable(t.peer.Code, nil).Code
	case errors.As(err, &peerErr) && peerErr.Code != "":
		entry.Error = peerErr.Message
		entry.ErrorCode = peerErr.Code
		s.dropDeadConsent(ctx, t.consent, peerErr.Code)
	default:
		entry.Error = err.Error()
		entry.ErrorCode = apperror.ErrPeerUnavailable(t.peer.Code, nil).Code
	}
	if entry.Error == "" {
		entry.Error = "peer request failed"
	}

	s.log.Warn().
		Err(err).
		Str("bank_code", t.peer.Code).
		Str("consent_id", t.consent.PeerConsentID).
		Str("error_code", entry.ErrorCode).
		Msg("peer account read failed")
	return entry
}

// dropDeadConsent marks the held consent revoked when the peer reports it
// can no longer be used, so later reads skip it.
func (s *AggregatorServiceImpl) dropDeadConsent(ctx context.Context, pc domain.PeerConsent, code string) {
	switch code {
	case apperror.ErrConsentRevoked().Code, apperror.ErrConsentExpired().Code, apperror.ErrConsentNotFound().Code:
	default:
		return
	}
	pc.Status = domain.PeerConsentRevoked
	pc.UpdatedAt = s.now()
	if err := s.peerConsents.Update(ctx, &pc); err != nil {
		s.log.Warn().Err(err).Str("peer_consent_id", pc.ID.String()).Msg("failed to mark peer consent revoked")
	}
}
