package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct{ s *Store }

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(s *Store) *PaymentRepo { return &PaymentRepo{s: s} }

func paymentKey(id uuid.UUID) string  { return "payment:" + id.String() }
func transferKey(id uuid.UUID) string { return "transfer:" + id.String() }

func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, paymentKey(p.ID)); err != nil {
		return fmt.Errorf("lock payment: %w", err)
	}
	if r.current(mt, p.ID) != nil {
		return ports.ErrAlreadyExists
	}
	row := *p
	mt.stage(paymentKey(p.ID), row, func() { r.s.payments[row.ID] = row })
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.committed(id), nil
}

func (r *PaymentRepo) committed(id uuid.UUID) *domain.Payment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil
	}
	return &p
}

func (r *PaymentRepo) current(mt *Tx, id uuid.UUID) *domain.Payment {
	if v, ok := mt.lookup(paymentKey(id)); ok {
		p := v.(domain.Payment)
		return &p
	}
	return r.committed(id)
}

func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, paymentKey(id)); err != nil {
		return nil, fmt.Errorf("lock payment: %w", err)
	}
	return r.current(mt, id), nil
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason string) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, paymentKey(id)); err != nil {
		return fmt.Errorf("lock payment: %w", err)
	}
	p := r.current(mt, id)
	if p == nil {
		return fmt.Errorf("payment not found: %s", id)
	}
	row := *p
	row.Status = status
	row.FailureReason = reason
	row.UpdatedAt = time.Now().UTC()
	mt.stage(paymentKey(id), row, func() { r.s.payments[id] = row })
	return nil
}

// ConsentUsage reads committed payments. Callers hold the consent row lock,
// which serializes every writer under the same consent.
func (r *PaymentRepo) ConsentUsage(_ context.Context, _ pgx.Tx, consentID uuid.UUID, since time.Time) (domain.ConsentUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	usage := domain.ConsentUsage{PeriodAmount: decimal.Zero}
	for _, p := range r.s.payments {
		if p.ConsentID == nil || *p.ConsentID != consentID || p.Status == domain.PaymentRejected {
			continue
		}
		usage.Payments++
		if !p.CreatedAt.Before(since) {
			usage.PeriodPayments++
			usage.PeriodAmount = usage.PeriodAmount.Add(p.Amount)
		}
	}
	return usage, nil
}

func (r *PaymentRepo) CreateTransfer(ctx context.Context, tx pgx.Tx, t *domain.InterbankTransfer) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, transferKey(t.PaymentID)); err != nil {
		return fmt.Errorf("lock transfer: %w", err)
	}
	if r.currentTransfer(mt, t.PaymentID) != nil {
		return ports.ErrAlreadyExists
	}
	row := *t
	mt.stage(transferKey(t.PaymentID), row, func() { r.s.transfers[row.PaymentID] = row })
	return nil
}

func (r *PaymentRepo) GetTransfer(_ context.Context, paymentID uuid.UUID) (*domain.InterbankTransfer, error) {
	return r.committedTransfer(paymentID), nil
}

func (r *PaymentRepo) committedTransfer(id uuid.UUID) *domain.InterbankTransfer {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil
	}
	return &t
}

func (r *PaymentRepo) currentTransfer(mt *Tx, id uuid.UUID) *domain.InterbankTransfer {
	if v, ok := mt.lookup(transferKey(id)); ok {
		t := v.(domain.InterbankTransfer)
		return &t
	}
	return r.committedTransfer(id)
}

func (r *PaymentRepo) UpdateTransfer(ctx context.Context, tx pgx.Tx, t *domain.InterbankTransfer) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, transferKey(t.PaymentID)); err != nil {
		return fmt.Errorf("lock transfer: %w", err)
	}
	if r.currentTransfer(mt, t.PaymentID) == nil {
		return fmt.Errorf("transfer not found: %s", t.PaymentID)
	}
	row := *t
	mt.stage(transferKey(t.PaymentID), row, func() { r.s.transfers[row.PaymentID] = row })
	return nil
}

func (r *PaymentRepo) ListStaleTransfers(_ context.Context, status domain.PaymentStatus, cutoff time.Time, limit int) ([]domain.InterbankTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.InterbankTransfer
	for _, t := range r.s.transfers {
		if t.Status == status && t.UpdatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InboundRepo implements ports.InboundTransferRepository.
type InboundRepo struct{ s *Store }

// NewInboundRepo creates a new InboundRepo.
func NewInboundRepo(s *Store) *InboundRepo { return &InboundRepo{s: s} }

func inboundKey(id uuid.UUID) string { return "inbound:" + id.String() }

// Create blocks on a concurrent delivery of the same payment id until that
// transaction ends, then reports ErrAlreadyExists if it committed.
func (r *InboundRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.InboundTransfer) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, inboundKey(t.PaymentID)); err != nil {
		return fmt.Errorf("lock inbound transfer: %w", err)
	}
	if _, ok := mt.lookup(inboundKey(t.PaymentID)); ok {
		return ports.ErrAlreadyExists
	}
	if existing, _ := r.Get(ctx, t.PaymentID); existing != nil {
		return ports.ErrAlreadyExists
	}
	row := *t
	mt.stage(inboundKey(t.PaymentID), row, func() { r.s.inbound[row.PaymentID] = row })
	return nil
}

func (r *InboundRepo) Get(_ context.Context, paymentID uuid.UUID) (*domain.InboundTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.inbound[paymentID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct{ s *Store }

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(s *Store) *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *log)
	return nil
}

// Entries returns a copy of every audit row, oldest first.
func (r *AuditRepo) Entries() []domain.AuditLog {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.AuditLog, len(r.s.audit))
	copy(out, r.s.audit)
	return out
}
