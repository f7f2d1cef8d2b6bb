package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"federated-bank/internal/adapter/storage/memory"
	"federated-bank/internal/core/domain"
	"federated-bank/pkg/jwk"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	keyPool []*rsa.PrivateKey
)

// testKey returns one of a few RSA keys generated once per test binary.
func testKey(t *testing.T, i int) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		for n := 0; n < 3; n++ {
			k, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				panic(err)
			}
			keyPool = append(keyPool, k)
		}
	})
	require.Less(t, i, len(keyPool))
	return keyPool[i]
}

type staticDirectory map[string]domain.Peer

func (d staticDirectory) Lookup(code string) (domain.Peer, bool) {
	p, ok := d[code]
	return p, ok
}

func (d staticDirectory) All() []domain.Peer {
	out := make([]domain.Peer, 0, len(d))
	for _, p := range d {
		out = append(out, p)
	}
	return out
}

// fakeFetcher serves a mutable key set per bank and counts fetches.
type fakeFetcher struct {
	mu    sync.Mutex
	sets  map[string]jwk.Set
	err   error
	delay time.Duration
	calls atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{sets: make(map[string]jwk.Set)}
}

func (f *fakeFetcher) publish(bank, kid string, key *rsa.PrivateKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[bank] = jwk.Set{Keys: []jwk.Key{jwk.FromRSA(kid, &key.PublicKey)}}
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) FetchKeySet(ctx context.Context, p domain.Peer) (jwk.Set, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return jwk.Set{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return jwk.Set{}, f.err
	}
	return f.sets[p.Code], nil
}

// clock is a settable time source for TTL tests.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// bankFixture is one bank backed by the in-memory store.
type bankFixture struct {
	store        *memory.Store
	clients      *memory.ClientRepo
	accounts     *memory.AccountRepo
	ledger       *memory.LedgerRepo
	capital      *memory.CapitalRepo
	consents     *memory.ConsentRepo
	peerConsents *memory.PeerConsentRepo
	payments     *memory.PaymentRepo
	inbound      *memory.InboundRepo
}

func newBankFixture() *bankFixture {
	s := memory.NewStore()
	return &bankFixture{
		store:        s,
		clients:      memory.NewClientRepo(s),
		accounts:     memory.NewAccountRepo(s),
		ledger:       memory.NewLedgerRepo(s),
		capital:      memory.NewCapitalRepo(s),
		consents:     memory.NewConsentRepo(s),
		peerConsents: memory.NewPeerConsentRepo(s),
		payments:     memory.NewPaymentRepo(s),
		inbound:      memory.NewInboundRepo(s),
	}
}

func (f *bankFixture) addClient(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.clients.Create(context.Background(), &domain.Client{ID: id, Name: id, CreatedAt: time.Now().UTC()}))
}

func (f *bankFixture) addAccount(t *testing.T, clientID, number, balance string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.accounts.Create(context.Background(), &domain.Account{
		Number:    number,
		ClientID:  clientID,
		Name:      "Current",
		Balance:   decimal.RequireFromString(balance),
		Currency:  "RUB",
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (f *bankFixture) seedCapital(t *testing.T, bank, balance string) {
	t.Helper()
	require.NoError(t, f.capital.Seed(context.Background(), bank, decimal.RequireFromString(balance)))
}

func (f *bankFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	a, err := f.accounts.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a.Balance
}

func (f *bankFixture) capitalBalance(t *testing.T, bank string) decimal.Decimal {
	t.Helper()
	c, err := f.capital.Get(context.Background(), bank)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.Balance
}
