package postgres

import (
	"context"
	"errors"
	"fmt"

	"federated-bank/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CapitalRepo implements ports.CapitalRepository.
type CapitalRepo struct {
	pool Pool
}

// NewCapitalRepo creates a new CapitalRepo.
func NewCapitalRepo(pool Pool) *CapitalRepo {
	return &CapitalRepo{pool: pool}
}

func scanCapital(row pgx.Row) (*domain.CapitalAccount, error) {
	c := &domain.CapitalAccount{}
	var balance string
	if err := row.Scan(&c.BankCode, &balance, &c.UpdatedAt); err != nil {
		return nil, err
	}
	bal, err := parseMoney(balance)
	if err != nil {
		return nil, err
	}
	c.Balance = bal
	return c, nil
}

// Seed creates the position for bankCode unless it already exists.
func (r *CapitalRepo) Seed(ctx context.Context, bankCode string, balance decimal.Decimal) error {
	query := `INSERT INTO capital_accounts (bank_code, balance, updated_at)
		VALUES ($1, $2::numeric, NOW()) ON CONFLICT (bank_code) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, bankCode, balance.String()); err != nil {
		return fmt.Errorf("seed capital: %w", err)
	}
	return nil
}

// Get fetches a position without locking.
func (r *CapitalRepo) Get(ctx context.Context, bankCode string) (*domain.CapitalAccount, error) {
	query := `SELECT bank_code, balance::text, updated_at FROM capital_accounts WHERE bank_code = $1`

	c, err := scanCapital(r.pool.QueryRow(ctx, query, bankCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get capital: %w", err)
	}
	return c, nil
}

// List returns all positions ordered by bank code.
func (r *CapitalRepo) List(ctx context.Context) ([]domain.CapitalAccount, error) {
	query := `SELECT bank_code, balance::text, updated_at FROM capital_accounts ORDER BY bank_code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list capital: %w", err)
	}
	defer rows.Close()

	var out []domain.CapitalAccount
	for rows.Next() {
		c, err := scanCapital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan capital row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capital rows: %w", err)
	}
	return out, nil
}

// GetForUpdate locks the position row. Must be called within a transaction.
func (r *CapitalRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, bankCode string) (*domain.CapitalAccount, error) {
	query := `SELECT bank_code, balance::text, updated_at FROM capital_accounts WHERE bank_code = $1 FOR UPDATE`

	c, err := scanCapital(tx.QueryRow(ctx, query, bankCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get capital for update: %w", err)
	}
	return c, nil
}

// UpdateBalance sets the position balance within a transaction.
func (r *CapitalRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, bankCode string, balance decimal.Decimal) error {
	query := `UPDATE capital_accounts SET balance = $1::numeric, updated_at = NOW() WHERE bank_code = $2`

	tag, err := tx.Exec(ctx, query, balance.String(), bankCode)
	if err != nil {
		return fmt.Errorf("update capital: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("capital account not found: %s", bankCode)
	}
	return nil
}
