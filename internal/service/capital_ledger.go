package service

import (
	"context"
	"fmt"
	"strings"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CapitalLedgerImpl keeps this bank's settlement position against each peer.
// Debit and Credit run inside the caller's transaction so the position moves
// atomically with the customer balance it offsets.
type CapitalLedgerImpl struct {
	repo ports.CapitalRepository
	log  zerolog.Logger
}

// NewCapitalLedger creates a new CapitalLedgerImpl.
func NewCapitalLedger(repo ports.CapitalRepository, log zerolog.Logger) *CapitalLedgerImpl {
	return &CapitalLedgerImpl{repo: repo, log: log}
}

// Debit takes amount from the position with bankCode. It fails with
// PAY_003 rather than drive the balance negative.
func (l *CapitalLedgerImpl) Debit(ctx context.Context, tx pgx.Tx, bankCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	bankCode = strings.ToLower(bankCode)

	acct, err := l.repo.GetForUpdate(ctx, tx, bankCode)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("lock capital: %w", err))
	}
	if acct == nil || !acct.CanDebit(amount) {
		return decimal.Zero, apperror.ErrInsufficientCapital(bankCode)
	}

	balance := acct.Balance.Sub(amount)
	if err := l.repo.UpdateBalance(ctx, tx, bankCode, balance); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("update capital: %w", err))
	}
	l.log.Debug().Str("bank_code", bankCode).Str("amount", amount.String()).Str("balance", balance.String()).Msg("capital debited")
	return balance, nil
}

// Credit adds amount to the position with bankCode. Unknown positions are
// an error; positions are seeded per configured peer at startup.
func (l *CapitalLedgerImpl) Credit(ctx context.Context, tx pgx.Tx, bankCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	bankCode = strings.ToLower(bankCode)

	acct, err := l.repo.GetForUpdate(ctx, tx, bankCode)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("lock capital: %w", err))
	}
	if acct == nil {
		return decimal.Zero, apperror.ErrNotFound("capital account")
	}

	balance := acct.Balance.Add(amount)
	if err := l.repo.UpdateBalance(ctx, tx, bankCode, balance); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("update capital: %w", err))
	}
	l.log.Debug().Str("bank_code", bankCode).Str("amount", amount.String()).Str("balance", balance.String()).Msg("capital credited")
	return balance, nil
}

// Balance returns the committed position with bankCode.
func (l *CapitalLedgerImpl) Balance(ctx context.Context, bankCode string) (decimal.Decimal, error) {
	acct, err := l.repo.Get(ctx, strings.ToLower(bankCode))
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get capital: %w", err))
	}
	if acct == nil {
		return decimal.Zero, apperror.ErrNotFound("capital account")
	}
	return acct.Balance, nil
}

// Positions lists every capital account.
func (l *CapitalLedgerImpl) Positions(ctx context.Context) ([]domain.CapitalAccount, error) {
	list, err := l.repo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list capital: %w", err))
	}
	return list, nil
}

// SeedPositions creates a position for every peer that does not have one.
// Existing balances are left untouched.
func (l *CapitalLedgerImpl) SeedPositions(ctx context.Context, peers []domain.Peer, initial decimal.Decimal) error {
	for _, p := range peers {
		if err := l.repo.Seed(ctx, p.Code, initial); err != nil {
			return fmt.Errorf("seed capital for %s: %w", p.Code, err)
		}
	}
	l.log.Info().Int("peers", len(peers)).Str("initial_balance", initial.String()).Msg("capital positions seeded")
	return nil
}
