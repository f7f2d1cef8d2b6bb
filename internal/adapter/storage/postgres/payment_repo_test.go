package postgres

import (
	"context"
	"testing"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepo_Create_DuplicateID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := &domain.Payment{ID: uuid.New(), Amount: decimal.NewFromInt(5), Status: domain.PaymentPending}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(anyArgs(15)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentRejected, "peer unavailable", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.PaymentRejected, "peer unavailable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_ListStaleTransfers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	cutoff := now.Add(-2 * time.Minute)
	id := uuid.New()

	cols := []string{"payment_id", "from_bank", "to_bank", "amount", "currency", "status", "attempts", "created_at", "updated_at", "settled_at"}
	var settled *time.Time
	mock.ExpectQuery("SELECT .+ FROM interbank_transfers WHERE status").
		WithArgs(domain.PaymentSettlementInProcess, cutoff, 50).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			id, "alpha", "beta", "250.00", "RUB", domain.PaymentSettlementInProcess, 2, now, now, settled,
		))

	got, err := repo.ListStaleTransfers(context.Background(), domain.PaymentSettlementInProcess, cutoff, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].PaymentID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 2, got[0].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInboundRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInboundRepo(mock)
	in := &domain.InboundTransfer{
		PaymentID: uuid.New(), FromBank: "beta", FromAccount: "x", ToAccount: "y",
		Amount: decimal.NewFromInt(7), Currency: "RUB", Status: domain.PaymentSettlementCompleted,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO inbound_transfers .+ ON CONFLICT").
		WithArgs(in.PaymentID, "beta", "x", "y", "7", "RUB", domain.PaymentSettlementCompleted, in.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO inbound_transfers .+ ON CONFLICT").
		WithArgs(anyArgs(8)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, in))
	assert.ErrorIs(t, repo.Create(context.Background(), tx, in), ports.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCapitalRepo_SeedAndLock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCapitalRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectExec("INSERT INTO capital_accounts .+ ON CONFLICT").
		WithArgs("beta", "3500000").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM capital_accounts WHERE bank_code .+ FOR UPDATE").
		WithArgs("beta").
		WillReturnRows(pgxmock.NewRows([]string{"bank_code", "balance", "updated_at"}).AddRow("beta", "3500000.00", now))

	require.NoError(t, repo.Seed(context.Background(), "beta", decimal.NewFromInt(3500000)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	c, err := repo.GetForUpdate(context.Background(), tx, "beta")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Balance.Equal(decimal.NewFromInt(3500000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentRepo_UpdateConsentStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConsentRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE consents SET status").
		WithArgs(domain.ConsentRevoked, &at, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE consents SET status").
		WithArgs(domain.ConsentRevoked, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.UpdateConsentStatus(context.Background(), tx, id, domain.ConsentRevoked, at))
	assert.Error(t, repo.UpdateConsentStatus(context.Background(), tx, id, domain.ConsentRevoked, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentRepo_CreateRequest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConsentRepo(mock)
	req := &domain.ConsentRequest{
		ID: uuid.New(), ClientID: "cli-1", RequestingBank: "beta",
		Permissions: []domain.Permission{domain.PermReadAccountsBasic, domain.PermReadBalances},
		Status:      domain.ConsentRequestPending, CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO consent_requests").
		WithArgs(req.ID, req.ClientID, req.RequestingBank, []string{"ReadAccountsBasic", "ReadBalances"},
			req.Reason, req.Status, req.ConsentID, req.CreatedAt, req.DecidedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.CreateRequest(context.Background(), tx, req))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentRepo_LimitsRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConsentRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	maxOne := decimal.RequireFromString("500.00")
	count := 3
	limits := &domain.PaymentLimits{MaxIndividualAmount: &maxOne, PeriodType: domain.PeriodWeek, MaxPaymentsCount: &count}
	raw, err := encodeLimits(limits)
	require.NoError(t, err)

	id := uuid.New()
	cols := []string{"id", "request_id", "client_id", "granted_to", "permissions", "status", "created_at", "expires_at", "revoked_at", "payment_limits"}
	var revoked *time.Time
	mock.ExpectQuery("SELECT .+ FROM consents WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			id, uuid.New(), "cli-1", "beta", []string{"InitiatePayment"}, domain.ConsentAuthorised, now, now.Add(time.Hour), revoked, raw,
		))

	c, err := repo.GetConsent(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c.Limits)
	assert.True(t, c.Limits.MaxIndividualAmount.Equal(maxOne))
	assert.Equal(t, domain.PeriodWeek, c.Limits.PeriodType)
	assert.Equal(t, 3, *c.Limits.MaxPaymentsCount)
	assert.Nil(t, c.Limits.MaxAmountPeriod)

	none, err := encodeLimits(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	decoded, err := decodeLimits(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestPaymentRepo_ConsentUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	consentID := uuid.New()
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT.+ FROM payments WHERE consent_id").
		WithArgs(consentID, since, domain.PaymentRejected).
		WillReturnRows(pgxmock.NewRows([]string{"count", "period_count", "period_amount"}).AddRow(4, 2, "150.50"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	usage, err := repo.ConsentUsage(context.Background(), tx, consentID, since)
	require.NoError(t, err)
	assert.Equal(t, 4, usage.Payments)
	assert.Equal(t, 2, usage.PeriodPayments)
	assert.True(t, usage.PeriodAmount.Equal(decimal.RequireFromString("150.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
