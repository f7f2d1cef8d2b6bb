package service

import (
	"context"
	"testing"

	"federated-bank/internal/core/domain"
	"federated-bank/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalLedger_DebitCredit(t *testing.T) {
	f := newBankFixture()
	l := NewCapitalLedger(f.capital, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, l.SeedPositions(ctx, []domain.Peer{{Code: "beta"}, {Code: "gamma"}}, decimal.NewFromInt(100)))

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	bal, err := l.Debit(ctx, tx, "BETA", decimal.RequireFromString("40.50"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("59.50")))
	bal, err = l.Credit(ctx, tx, "beta", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("69.50")))
	require.NoError(t, tx.Commit(ctx))

	got, err := l.Balance(ctx, "beta")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("69.50")))

	positions, err := l.Positions(ctx)
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestCapitalLedger_NeverNegative(t *testing.T) {
	f := newBankFixture()
	l := NewCapitalLedger(f.capital, zerolog.Nop())
	ctx := context.Background()
	f.seedCapital(t, "beta", "10")

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = l.Debit(ctx, tx, "beta", decimal.RequireFromString("10.01"))
	assert.ErrorIs(t, err, apperror.ErrInsufficientCapital(""))

	_, err = l.Debit(ctx, tx, "unknown", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, apperror.ErrInsufficientCapital(""))

	_, err = l.Debit(ctx, tx, "beta", decimal.Zero)
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount())

	_, err = l.Credit(ctx, tx, "unknown", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, apperror.ErrNotFound(""))

	bal, err := l.Debit(ctx, tx, "beta", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestCapitalLedger_SeedKeepsExisting(t *testing.T) {
	f := newBankFixture()
	l := NewCapitalLedger(f.capital, zerolog.Nop())
	ctx := context.Background()
	f.seedCapital(t, "beta", "5")

	require.NoError(t, l.SeedPositions(ctx, []domain.Peer{{Code: "beta"}}, decimal.NewFromInt(1000)))
	assert.True(t, f.capitalBalance(t, "beta").Equal(decimal.NewFromInt(5)))
}
