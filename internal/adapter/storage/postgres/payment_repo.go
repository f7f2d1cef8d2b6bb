package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, client_id, from_account, to_bank, to_account, amount::text, currency, description,
	route, status, initiated_by, consent_id, failure_reason, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	var amount string
	err := row.Scan(&p.ID, &p.ClientID, &p.FromAccount, &p.ToBank, &p.ToAccount, &amount, &p.Currency, &p.Description,
		&p.Route, &p.Status, &p.InitiatedBy, &p.ConsentID, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a payment within a transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (id, client_id, from_account, to_bank, to_account, amount, currency, description,
			route, status, initiated_by, consent_id, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.ClientID, p.FromAccount, p.ToBank, p.ToAccount, p.Amount.String(), p.Currency, p.Description,
		p.Route, p.Status, p.InitiatedBy, p.ConsentID, p.FailureReason, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment without locking.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate locks the payment row.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment for update: %w", err)
	}
	return p, nil
}

// UpdateStatus changes the payment status within a transaction.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason string) error {
	query := `UPDATE payments SET status = $1, failure_reason = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, reason, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// ConsentUsage runs inside the caller's transaction, after it locked the
// consent row.
func (r *PaymentRepo) ConsentUsage(ctx context.Context, tx pgx.Tx, consentID uuid.UUID, since time.Time) (domain.ConsentUsage, error) {
	query := `SELECT COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COALESCE(SUM(amount) FILTER (WHERE created_at >= $2), 0)::text
		FROM payments WHERE consent_id = $1 AND status <> $3`

	var (
		usage  domain.ConsentUsage
		amount string
	)
	err := tx.QueryRow(ctx, query, consentID, since, domain.PaymentRejected).
		Scan(&usage.Payments, &usage.PeriodPayments, &amount)
	if err != nil {
		return domain.ConsentUsage{}, fmt.Errorf("consent usage: %w", err)
	}
	if usage.PeriodAmount, err = parseMoney(amount); err != nil {
		return domain.ConsentUsage{}, err
	}
	return usage, nil
}

const transferColumns = `payment_id, from_bank, to_bank, amount::text, currency, status, attempts, created_at, updated_at, settled_at`

func scanTransfer(row pgx.Row) (*domain.InterbankTransfer, error) {
	t := &domain.InterbankTransfer{}
	var amount string
	err := row.Scan(&t.PaymentID, &t.FromBank, &t.ToBank, &amount, &t.Currency, &t.Status, &t.Attempts,
		&t.CreatedAt, &t.UpdatedAt, &t.SettledAt)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTransfer inserts the interbank leg of a payment.
func (r *PaymentRepo) CreateTransfer(ctx context.Context, tx pgx.Tx, t *domain.InterbankTransfer) error {
	query := `INSERT INTO interbank_transfers (payment_id, from_bank, to_bank, amount, currency, status, attempts,
			created_at, updated_at, settled_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		t.PaymentID, t.FromBank, t.ToBank, t.Amount.String(), t.Currency, t.Status, t.Attempts,
		t.CreatedAt, t.UpdatedAt, t.SettledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert interbank transfer: %w", err)
	}
	return nil
}

// GetTransfer fetches the interbank leg for a payment.
func (r *PaymentRepo) GetTransfer(ctx context.Context, paymentID uuid.UUID) (*domain.InterbankTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM interbank_transfers WHERE payment_id = $1`

	t, err := scanTransfer(r.pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interbank transfer: %w", err)
	}
	return t, nil
}

// UpdateTransfer persists status, attempts and settlement time.
func (r *PaymentRepo) UpdateTransfer(ctx context.Context, tx pgx.Tx, t *domain.InterbankTransfer) error {
	query := `UPDATE interbank_transfers SET status = $1, attempts = $2, updated_at = $3, settled_at = $4
		WHERE payment_id = $5`

	tag, err := tx.Exec(ctx, query, t.Status, t.Attempts, t.UpdatedAt, t.SettledAt, t.PaymentID)
	if err != nil {
		return fmt.Errorf("update interbank transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("interbank transfer not found: %s", t.PaymentID)
	}
	return nil
}

// ListStaleTransfers returns transfers in status not touched since cutoff,
// oldest first.
func (r *PaymentRepo) ListStaleTransfers(ctx context.Context, status domain.PaymentStatus, cutoff time.Time, limit int) ([]domain.InterbankTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM interbank_transfers
		WHERE status = $1 AND updated_at < $2 ORDER BY updated_at LIMIT $3`

	rows, err := r.pool.Query(ctx, query, status, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale transfers: %w", err)
	}
	defer rows.Close()

	var out []domain.InterbankTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return out, nil
}

// InboundRepo implements ports.InboundTransferRepository.
type InboundRepo struct {
	pool Pool
}

// NewInboundRepo creates a new InboundRepo.
func NewInboundRepo(pool Pool) *InboundRepo {
	return &InboundRepo{pool: pool}
}

// Create records a settled inbound transfer. A concurrent insert of the same
// payment id waits on the primary key and then reports ErrAlreadyExists.
func (r *InboundRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.InboundTransfer) error {
	query := `INSERT INTO inbound_transfers (payment_id, from_bank, from_account, to_account, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8) ON CONFLICT (payment_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		t.PaymentID, t.FromBank, t.FromAccount, t.ToAccount, t.Amount.String(), t.Currency, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inbound transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrAlreadyExists
	}
	return nil
}

// Get fetches an inbound transfer by payment id.
func (r *InboundRepo) Get(ctx context.Context, paymentID uuid.UUID) (*domain.InboundTransfer, error) {
	query := `SELECT payment_id, from_bank, from_account, to_account, amount::text, currency, status, created_at
		FROM inbound_transfers WHERE payment_id = $1`

	t := &domain.InboundTransfer{}
	var amount string
	err := r.pool.QueryRow(ctx, query, paymentID).Scan(
		&t.PaymentID, &t.FromBank, &t.FromAccount, &t.ToAccount, &amount, &t.Currency, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inbound transfer: %w", err)
	}
	if t.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	return t, nil
}
