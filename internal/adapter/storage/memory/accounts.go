package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ClientRepo implements ports.ClientRepository.
type ClientRepo struct{ s *Store }

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(s *Store) *ClientRepo { return &ClientRepo{s: s} }

func (r *ClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; ok {
		return ports.ErrAlreadyExists
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct{ s *Store }

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(s *Store) *AccountRepo { return &AccountRepo{s: s} }

func accountKey(n string) string { return "account:" + n }

func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.Number]; ok {
		return ports.ErrAlreadyExists
	}
	r.s.accounts[a.Number] = *a
	return nil
}

func (r *AccountRepo) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[number]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) ListByClient(_ context.Context, clientID string) ([]domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Account
	for _, a := range r.s.accounts {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *AccountRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Account, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, accountKey(number)); err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	return r.current(mt, number), nil
}

func (r *AccountRepo) current(mt *Tx, number string) *domain.Account {
	if v, ok := mt.lookup(accountKey(number)); ok {
		a := v.(domain.Account)
		return &a
	}
	return r.committed(number)
}

func (r *AccountRepo) committed(number string) *domain.Account {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[number]
	if !ok {
		return nil
	}
	return &a
}

func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, number string, balance decimal.Decimal) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, accountKey(number)); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	a := r.current(mt, number)
	if a == nil {
		return fmt.Errorf("account not found: %s", number)
	}
	updated := *a
	updated.Balance = balance
	updated.UpdatedAt = time.Now().UTC()
	mt.stage(accountKey(number), updated, func() { r.s.accounts[number] = updated })
	return nil
}

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct{ s *Store }

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(s *Store) *LedgerRepo { return &LedgerRepo{s: s} }

func (r *LedgerRepo) Create(_ context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	entry := *e
	mt.apply = append(mt.apply, func() { r.s.ledger = append(r.s.ledger, entry) })
	return nil
}

// ListByAccount returns the newest entries first.
func (r *LedgerRepo) ListByAccount(_ context.Context, number string, limit int) ([]domain.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].AccountNumber != number {
			continue
		}
		out = append(out, r.s.ledger[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// CapitalRepo implements ports.CapitalRepository.
type CapitalRepo struct{ s *Store }

// NewCapitalRepo creates a new CapitalRepo.
func NewCapitalRepo(s *Store) *CapitalRepo { return &CapitalRepo{s: s} }

func capitalKey(code string) string { return "capital:" + code }

func (r *CapitalRepo) Seed(_ context.Context, bankCode string, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.capital[bankCode]; ok {
		return nil
	}
	r.s.capital[bankCode] = domain.CapitalAccount{BankCode: bankCode, Balance: balance, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *CapitalRepo) Get(_ context.Context, bankCode string) (*domain.CapitalAccount, error) {
	return r.committed(bankCode), nil
}

func (r *CapitalRepo) List(_ context.Context) ([]domain.CapitalAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.CapitalAccount, 0, len(r.s.capital))
	for _, c := range r.s.capital {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BankCode < out[j].BankCode })
	return out, nil
}

func (r *CapitalRepo) committed(code string) *domain.CapitalAccount {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.capital[code]
	if !ok {
		return nil
	}
	return &c
}

func (r *CapitalRepo) current(mt *Tx, code string) *domain.CapitalAccount {
	if v, ok := mt.lookup(capitalKey(code)); ok {
		c := v.(domain.CapitalAccount)
		return &c
	}
	return r.committed(code)
}

func (r *CapitalRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, bankCode string) (*domain.CapitalAccount, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, capitalKey(bankCode)); err != nil {
		return nil, fmt.Errorf("lock capital: %w", err)
	}
	return r.current(mt, bankCode), nil
}

func (r *CapitalRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, bankCode string, balance decimal.Decimal) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, capitalKey(bankCode)); err != nil {
		return fmt.Errorf("lock capital: %w", err)
	}
	c := r.current(mt, bankCode)
	if c == nil {
		return fmt.Errorf("capital account not found: %s", bankCode)
	}
	updated := *c
	updated.Balance = balance
	updated.UpdatedAt = time.Now().UTC()
	mt.stage(capitalKey(bankCode), updated, func() { r.s.capital[bankCode] = updated })
	return nil
}
