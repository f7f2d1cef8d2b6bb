package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/jwk"
	"federated-bank/pkg/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// TrustConfig tunes the key cache.
type TrustConfig struct {
	TTL                time.Duration
	MinRefreshInterval time.Duration
	FetchTimeout       time.Duration
}

// TrustRegistry implements ports.TrustRegistry. Key sets are cached per
// bank for TTL; an unknown kid forces a refresh unless one happened within
// MinRefreshInterval. Concurrent refreshes for the same bank share one fetch.
type TrustRegistry struct {
	dir     ports.PeerDirectory
	fetcher ports.KeySetFetcher
	cfg     TrustConfig
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.RWMutex
	records     map[string]*domain.BankTrustRecord
	lastRefresh map[string]time.Time
	group       singleflight.Group
}

// NewTrustRegistry creates an empty registry.
func NewTrustRegistry(dir ports.PeerDirectory, fetcher ports.KeySetFetcher, cfg TrustConfig, log zerolog.Logger) *TrustRegistry {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	return &TrustRegistry{
		dir:         dir,
		fetcher:     fetcher,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
		records:     make(map[string]*domain.BankTrustRecord),
		lastRefresh: make(map[string]time.Time),
	}
}

// PublicKey returns the key bankCode signs with under kid.
func (r *TrustRegistry) PublicKey(ctx context.Context, bankCode, kid string) (*rsa.PublicKey, error) {
	peer, ok := r.dir.Lookup(bankCode)
	if !ok {
		return nil, apperror.ErrUntrustedIssuer(bankCode)
	}

	now := r.now()
	r.mu.RLock()
	rec := r.records[peer.Code]
	last := r.lastRefresh[peer.Code]
	r.mu.RUnlock()

	if rec.Fresh(now) {
		if key, ok := rec.Key(kid); ok {
			return key, nil
		}
		if now.Sub(last) < r.cfg.MinRefreshInterval {
			return nil, apperror.ErrUntrustedIssuer(bankCode)
		}
	}

	rec, err := r.refresh(ctx, peer)
	if err != nil {
		return nil, err
	}
	key, ok := rec.Key(kid)
	if !ok {
		return nil, apperror.ErrUntrustedIssuer(bankCode)
	}
	return key, nil
}

// Invalidate drops the cached keys of bankCode.
func (r *TrustRegistry) Invalidate(bankCode string) {
	peer, ok := r.dir.Lookup(bankCode)
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.records, peer.Code)
	delete(r.lastRefresh, peer.Code)
	r.mu.Unlock()
}

func (r *TrustRegistry) refresh(ctx context.Context, peer domain.Peer) (*domain.BankTrustRecord, error) {
	ch := r.group.DoChan(peer.Code, func() (any, error) {
		// The fetch outlives any single waiter so that one cancelled caller
		// does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.FetchTimeout)
		defer cancel()
		return r.fetch(fetchCtx, peer)
	})

	select {
	case <-ctx.Done():
		return nil, apperror.ErrKeyFetchFailed(peer.Code, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			var appErr *apperror.AppError
			if errors.As(res.Err, &appErr) {
				return nil, appErr
			}
			return nil, apperror.ErrKeyFetchFailed(peer.Code, res.Err)
		}
		return res.Val.(*domain.BankTrustRecord), nil
	}
}

func (r *TrustRegistry) fetch(ctx context.Context, peer domain.Peer) (*domain.BankTrustRecord, error) {
	now := r.now()
	r.mu.Lock()
	r.lastRefresh[peer.Code] = now
	r.mu.Unlock()

	set, err := r.fetcher.FetchKeySet(ctx, peer)
	if err != nil {
		metrics.TrustRefreshes.WithLabelValues(peer.Code, "error").Inc()
		r.log.Warn().Err(err).Str("bank_code", peer.Code).Msg("key set refresh failed")
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	keys := jwk.RSAKeys(set)
	if len(keys) == 0 {
		metrics.TrustRefreshes.WithLabelValues(peer.Code, "empty").Inc()
		return nil, fmt.Errorf("key set of %s has no usable signing keys", peer.Code)
	}

	rec := &domain.BankTrustRecord{
		BankCode:  peer.Code,
		Source:    peer.KeySource(),
		Keys:      keys,
		FetchedAt: now,
		TTL:       r.cfg.TTL,
	}
	r.mu.Lock()
	r.records[peer.Code] = rec
	r.mu.Unlock()

	metrics.TrustRefreshes.WithLabelValues(peer.Code, "ok").Inc()
	r.log.Info().Str("bank_code", peer.Code).Int("keys", len(keys)).Msg("key set refreshed")
	return rec, nil
}
