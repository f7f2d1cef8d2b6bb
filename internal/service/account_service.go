package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// AccountServiceImpl serves account data to the owning client and to peer
// banks holding a consent.
type AccountServiceImpl struct {
	accounts ports.AccountRepository
	ledger   ports.LedgerRepository
	consents ports.ConsentService
	log      zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(accounts ports.AccountRepository, ledger ports.LedgerRepository, consents ports.ConsentService, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{accounts: accounts, ledger: ledger, consents: consents, log: log}
}

// grant is what a caller may see.
type grant struct {
	clientID string
	consent  *domain.Consent
}

func (g grant) allows(p domain.Permission) bool {
	return g.consent == nil || g.consent.Grants(p)
}

// authorize resolves whose data the caller may read. A bank must hold a
// consent granting one of perms.
func (s *AccountServiceImpl) authorize(ctx context.Context, access ports.AccountAccess, perms ...domain.Permission) (grant, error) {
	p := access.Principal
	if p.IsClient() {
		return grant{clientID: p.Subject}, nil
	}
	if !p.IsBank() {
		return grant{}, apperror.ErrWrongPrincipal("client or bank")
	}
	if access.RequestingBank != "" && !strings.EqualFold(access.RequestingBank, p.Issuer) {
		return grant{}, apperror.ErrConsentWrongBank()
	}

	var err error
	for _, perm := range perms {
		var consent *domain.Consent
		consent, err = s.consents.VerifyConsent(ctx, access.ConsentID, p.Issuer, perm)
		if err == nil {
			return grant{clientID: consent.ClientID, consent: consent}, nil
		}
		if !errors.Is(err, apperror.ErrInsufficientScope("")) {
			break
		}
	}
	s.log.Info().Err(err).Str("bank_code", p.Issuer).Str("consent_id", access.ConsentID.String()).Msg("account access denied")
	return grant{}, err
}

func toView(a domain.Account, withBalance bool) domain.AccountView {
	v := domain.AccountView{
		AccountNumber: a.Number,
		Name:          a.Name,
		Currency:      a.Currency,
		Status:        string(a.Status),
	}
	if withBalance {
		b := a.Balance
		v.Balance = &b
	}
	return v
}

// ListAccounts lists the accounts the caller may see. Balances are included
// for the owner and for consents granting ReadBalances.
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, access ports.AccountAccess) ([]domain.AccountView, error) {
	g, err := s.authorize(ctx, access, domain.PermReadAccountsBasic, domain.PermReadBalances)
	if err != nil {
		return nil, err
	}
	list, err := s.accounts.ListByClient(ctx, g.clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	withBalance := g.allows(domain.PermReadBalances)
	views := make([]domain.AccountView, 0, len(list))
	for _, a := range list {
		views = append(views, toView(a, withBalance))
	}
	return views, nil
}

// GetBalance returns one account with its balance.
func (s *AccountServiceImpl) GetBalance(ctx context.Context, access ports.AccountAccess, number string) (*domain.AccountView, error) {
	g, err := s.authorize(ctx, access, domain.PermReadBalances)
	if err != nil {
		return nil, err
	}
	acct, err := s.owned(ctx, g.clientID, number)
	if err != nil {
		return nil, err
	}
	v := toView(*acct, true)
	return &v, nil
}

// ListTransactions returns the newest ledger entries of one account.
// Descriptions are withheld unless the consent grants the detailed scope.
func (s *AccountServiceImpl) ListTransactions(ctx context.Context, access ports.AccountAccess, number string, limit int) ([]domain.LedgerEntry, error) {
	g, err := s.authorize(ctx, access, domain.PermReadTransactionsBasic, domain.PermReadTransactionsDetail)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, g.clientID, number); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}
	entries, err := s.ledger.ListByAccount(ctx, number, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}
	if !g.allows(domain.PermReadTransactionsDetail) {
		for i := range entries {
			entries[i].Description = ""
		}
	}
	return entries, nil
}

func (s *AccountServiceImpl) owned(ctx context.Context, clientID, number string) (*domain.Account, error) {
	acct, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil || acct.ClientID != clientID {
		return nil, apperror.ErrNotFound("account")
	}
	return acct, nil
}
