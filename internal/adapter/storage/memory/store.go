// Package memory is an in-process store with row locks and transactional
// writes. It backs the memory storage driver and service-level tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"federated-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store holds every table. Committed rows are guarded by mu; row locks
// serialize writers the way SELECT ... FOR UPDATE does in postgres.
type Store struct {
	mu    sync.Mutex
	locks map[string]chan struct{}

	clients      map[string]domain.Client
	accounts     map[string]domain.Account
	ledger       []domain.LedgerEntry
	capital      map[string]domain.CapitalAccount
	requests     map[uuid.UUID]domain.ConsentRequest
	consents     map[uuid.UUID]domain.Consent
	peerConsents map[uuid.UUID]domain.PeerConsent
	payments     map[uuid.UUID]domain.Payment
	transfers    map[uuid.UUID]domain.InterbankTransfer
	inbound      map[uuid.UUID]domain.InboundTransfer
	audit        []domain.AuditLog
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		locks:        make(map[string]chan struct{}),
		clients:      make(map[string]domain.Client),
		accounts:     make(map[string]domain.Account),
		capital:      make(map[string]domain.CapitalAccount),
		requests:     make(map[uuid.UUID]domain.ConsentRequest),
		consents:     make(map[uuid.UUID]domain.Consent),
		peerConsents: make(map[uuid.UUID]domain.PeerConsent),
		payments:     make(map[uuid.UUID]domain.Payment),
		transfers:    make(map[uuid.UUID]domain.InterbankTransfer),
		inbound:      make(map[uuid.UUID]domain.InboundTransfer),
	}
}

// Begin starts a transaction. It implements ports.DBTransactor.
func (s *Store) Begin(_ context.Context) (pgx.Tx, error) {
	return &Tx{
		store:  s,
		held:   make(map[string]chan struct{}),
		staged: make(map[string]any),
	}, nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(_ context.Context) error { return nil }

// Name returns the dependency name.
func (s *Store) Name() string { return "memory" }

func (s *Store) lockChan(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

var errForeignTx = errors.New("memory store: transaction was not started by this store")

// Tx is a store transaction. Writes are staged and become visible to other
// readers only on Commit; Rollback discards them. Row locks are held until
// either. Only Commit and Rollback of pgx.Tx are implemented.
type Tx struct {
	pgx.Tx

	store  *Store
	held   map[string]chan struct{}
	order  []string
	staged map[string]any
	apply  []func()
	done   bool
}

func asTx(s *Store, tx pgx.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, errForeignTx
	}
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}

// lock acquires the row lock for key, blocking until it is free or ctx ends.
func (t *Tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.store.lockChan(key)
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		t.order = append(t.order, key)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tx) stage(key string, v any, apply func()) {
	t.staged[key] = v
	t.apply = append(t.apply, apply)
}

func (t *Tx) lookup(key string) (any, bool) {
	v, ok := t.staged[key]
	return v, ok
}

func (t *Tx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		<-t.held[t.order[i]]
	}
	t.held = nil
	t.order = nil
	t.staged = nil
	t.apply = nil
	t.done = true
}

// Commit publishes staged writes atomically and releases row locks.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, f := range t.apply {
		f()
	}
	t.store.mu.Unlock()
	t.release()
	return nil
}

// Rollback discards staged writes and releases row locks.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.release()
	return nil
}
