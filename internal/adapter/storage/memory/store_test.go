package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, number string, balance string) {
	t.Helper()
	require.NoError(t, NewAccountRepo(s).Create(context.Background(), &domain.Account{
		Number:   number,
		ClientID: "cli-1",
		Balance:  decimal.RequireFromString(balance),
		Currency: "RUB",
		Status:   domain.AccountStatusActive,
	}))
}

func TestTx_CommitPublishesWrites(t *testing.T) {
	s := NewStore()
	repo := NewAccountRepo(s)
	ctx := context.Background()
	seedAccount(t, s, "acc-1", "100")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	a, err := repo.GetByNumberForUpdate(ctx, tx, "acc-1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateBalance(ctx, tx, "acc-1", a.Balance.Sub(decimal.NewFromInt(40))))

	// Staged write is visible inside the transaction only.
	inTx, err := repo.GetByNumberForUpdate(ctx, tx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "60", inTx.Balance.String())
	outside, err := repo.GetByNumber(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "100", outside.Balance.String())

	require.NoError(t, tx.Commit(ctx))

	after, err := repo.GetByNumber(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "60", after.Balance.String())

	assert.ErrorIs(t, tx.Rollback(ctx), pgx.ErrTxClosed)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	s := NewStore()
	repo := NewAccountRepo(s)
	ledger := NewLedgerRepo(s)
	ctx := context.Background()
	seedAccount(t, s, "acc-1", "100")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateBalance(ctx, tx, "acc-1", decimal.Zero))
	require.NoError(t, ledger.Create(ctx, tx, domain.NewLedgerEntry("acc-1", uuid.New(), domain.EntryDebit, decimal.NewFromInt(100), decimal.Zero, "")))
	require.NoError(t, tx.Rollback(ctx))

	a, err := repo.GetByNumber(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "100", a.Balance.String())

	entries, err := ledger.ListByAccount(ctx, "acc-1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTx_RowLockSerializesWriters(t *testing.T) {
	s := NewStore()
	repo := NewAccountRepo(s)
	ctx := context.Background()
	seedAccount(t, s, "acc-1", "0")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.Begin(ctx)
			require.NoError(t, err)
			defer tx.Rollback(ctx) //nolint:errcheck
			a, err := repo.GetByNumberForUpdate(ctx, tx, "acc-1")
			require.NoError(t, err)
			require.NoError(t, repo.UpdateBalance(ctx, tx, "acc-1", a.Balance.Add(decimal.NewFromInt(1))))
			require.NoError(t, tx.Commit(ctx))
		}()
	}
	wg.Wait()

	a, err := repo.GetByNumber(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "50", a.Balance.String())
}

func TestTx_LockHonoursContext(t *testing.T) {
	s := NewStore()
	repo := NewAccountRepo(s)
	seedAccount(t, s, "acc-1", "10")

	holder, err := s.Begin(context.Background())
	require.NoError(t, err)
	_, err = repo.GetByNumberForUpdate(context.Background(), holder, "acc-1")
	require.NoError(t, err)
	defer holder.Rollback(context.Background()) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = repo.GetByNumberForUpdate(ctx, waiter, "acc-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTx_ForeignTransactionRejected(t *testing.T) {
	s1, s2 := NewStore(), NewStore()
	tx, err := s2.Begin(context.Background())
	require.NoError(t, err)

	_, err = NewAccountRepo(s1).GetByNumberForUpdate(context.Background(), tx, "x")
	assert.ErrorIs(t, err, errForeignTx)
}

func TestPaymentRepo_DuplicateID(t *testing.T) {
	s := NewStore()
	repo := NewPaymentRepo(s)
	ctx := context.Background()
	p := &domain.Payment{ID: uuid.New(), Status: domain.PaymentSettlementCompleted}

	tx, _ := s.Begin(ctx)
	require.NoError(t, repo.Create(ctx, tx, p))
	require.NoError(t, tx.Commit(ctx))

	tx2, _ := s.Begin(ctx)
	defer tx2.Rollback(ctx) //nolint:errcheck
	assert.ErrorIs(t, repo.Create(ctx, tx2, p), ports.ErrAlreadyExists)
}

func TestPaymentRepo_ListStaleTransfers(t *testing.T) {
	s := NewStore()
	repo := NewPaymentRepo(s)
	ctx := context.Background()

	now := time.Now().UTC()
	tx, _ := s.Begin(ctx)
	stuck := &domain.InterbankTransfer{PaymentID: uuid.New(), Status: domain.PaymentSettlementInProcess, CreatedAt: now, UpdatedAt: now}
	done := &domain.InterbankTransfer{PaymentID: uuid.New(), Status: domain.PaymentSettlementCompleted, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateTransfer(ctx, tx, stuck))
	require.NoError(t, repo.CreateTransfer(ctx, tx, done))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.ListStaleTransfers(ctx, domain.PaymentSettlementInProcess, now.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stuck.PaymentID, got[0].PaymentID)

	none, err := repo.ListStaleTransfers(ctx, domain.PaymentSettlementInProcess, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPaymentRepo_UpdateTransferKeepsTimestamp(t *testing.T) {
	s := NewStore()
	repo := NewPaymentRepo(s)
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour)

	tx, _ := s.Begin(ctx)
	tr := &domain.InterbankTransfer{PaymentID: uuid.New(), Status: domain.PaymentSettlementInProcess, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, repo.CreateTransfer(ctx, tx, tr))
	require.NoError(t, tx.Commit(ctx))

	touched := created.Add(30 * time.Minute)
	tx, _ = s.Begin(ctx)
	tr.Attempts = 1
	tr.UpdatedAt = touched
	require.NoError(t, repo.UpdateTransfer(ctx, tx, tr))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetTransfer(ctx, tr.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UpdatedAt.Equal(touched))
	assert.Equal(t, 1, got.Attempts)
}

func TestPaymentRepo_ConsentUsage(t *testing.T) {
	s := NewStore()
	repo := NewPaymentRepo(s)
	ctx := context.Background()
	consentID := uuid.New()
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	pay := func(amount string, status domain.PaymentStatus, at time.Time, consent *uuid.UUID) {
		tx, _ := s.Begin(ctx)
		require.NoError(t, repo.Create(ctx, tx, &domain.Payment{
			ID: uuid.New(), ConsentID: consent, Amount: decimal.RequireFromString(amount), Status: status, CreatedAt: at,
		}))
		require.NoError(t, tx.Commit(ctx))
	}
	pay("10.00", domain.PaymentSettlementCompleted, since.Add(-time.Hour), &consentID)
	pay("20.00", domain.PaymentSettlementCompleted, since, &consentID)
	pay("30.00", domain.PaymentSettlementInProcess, since.Add(time.Hour), &consentID)
	pay("40.00", domain.PaymentRejected, since.Add(time.Hour), &consentID)
	pay("50.00", domain.PaymentSettlementCompleted, since.Add(time.Hour), nil)

	usage, err := repo.ConsentUsage(ctx, nil, consentID, since)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Payments)
	assert.Equal(t, 2, usage.PeriodPayments)
	assert.True(t, usage.PeriodAmount.Equal(decimal.RequireFromString("50")), usage.PeriodAmount.String())
}

func TestInboundRepo_ConcurrentDeliveryCreditsOnce(t *testing.T) {
	s := NewStore()
	repo := NewInboundRepo(s)
	ctx := context.Background()
	id := uuid.New()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		dupes    int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, _ := s.Begin(ctx)
			defer tx.Rollback(ctx) //nolint:errcheck
			err := repo.Create(ctx, tx, &domain.InboundTransfer{PaymentID: id, Amount: decimal.NewFromInt(5)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				inserted++
				require.NoError(t, tx.Commit(ctx))
				return
			}
			assert.ErrorIs(t, err, ports.ErrAlreadyExists)
			dupes++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.Equal(t, 9, dupes)
}

func TestConsentRepo_RevokeVisibleAfterCommit(t *testing.T) {
	s := NewStore()
	repo := NewConsentRepo(s)
	ctx := context.Background()
	c := &domain.Consent{ID: uuid.New(), ClientID: "cli-1", Status: domain.ConsentAuthorised}

	tx, _ := s.Begin(ctx)
	require.NoError(t, repo.CreateConsent(ctx, tx, c))
	require.NoError(t, tx.Commit(ctx))

	tx2, _ := s.Begin(ctx)
	require.NoError(t, repo.UpdateConsentStatus(ctx, tx2, c.ID, domain.ConsentRevoked, time.Now()))
	before, _ := repo.GetConsent(ctx, c.ID)
	assert.Equal(t, domain.ConsentAuthorised, before.Status)
	require.NoError(t, tx2.Commit(ctx))

	after, _ := repo.GetConsent(ctx, c.ID)
	assert.Equal(t, domain.ConsentRevoked, after.Status)
	assert.NotNil(t, after.RevokedAt)
}

func TestCapitalRepo_SeedIsIdempotent(t *testing.T) {
	s := NewStore()
	repo := NewCapitalRepo(s)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, "abank", decimal.NewFromInt(100)))
	require.NoError(t, repo.Seed(ctx, "abank", decimal.NewFromInt(999)))

	c, err := repo.Get(ctx, "abank")
	require.NoError(t, err)
	assert.Equal(t, "100", c.Balance.String())

	missing, err := repo.Get(ctx, "zbank")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAggregateCache_TTL(t *testing.T) {
	c := NewAggregateCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.BankAccounts{BankCode: "abank", ConsentID: "c1"}, time.Minute))
	got, err := c.Get(ctx, "abank", "c1")
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(time.Minute)
	got, err = c.Get(ctx, "abank", "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyCache_TTL(t *testing.T) {
	c := NewIdempotencyCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v"), v)

	now = now.Add(2 * time.Second)
	v, _ = c.Get(ctx, "k")
	assert.Nil(t, v)
}

func TestRateLimitStore_Allow(t *testing.T) {
	s := NewRateLimitStore()
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		res, err := s.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i, res.Remaining)
	}
	res, _ := s.Allow(ctx, "k", 3, time.Minute)
	assert.False(t, res.Allowed)

	now = now.Add(time.Minute)
	res, _ = s.Allow(ctx, "k", 3, time.Minute)
	assert.True(t, res.Allowed)
}
