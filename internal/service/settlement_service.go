package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/metrics"

	"github.com/rs/zerolog"
)

// SettlementServiceImpl implements ports.SettlementService: the receiving
// side of an interbank transfer.
type SettlementServiceImpl struct {
	accounts   ports.AccountRepository
	ledger     ports.LedgerRepository
	inbound    ports.InboundTransferRepository
	capital    ports.CapitalLedger
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	now        func() time.Time
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	accounts ports.AccountRepository,
	ledger ports.LedgerRepository,
	inbound ports.InboundTransferRepository,
	capital ports.CapitalLedger,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		accounts:   accounts,
		ledger:     ledger,
		inbound:    inbound,
		capital:    capital,
		idempCache: idempCache,
		transactor: transactor,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// AcceptTransfer credits a local account with money sent by a peer bank.
// A repeated delivery of the same payment id is acknowledged again without
// crediting twice.
func (s *SettlementServiceImpl) AcceptTransfer(ctx context.Context, principal domain.Principal, req ports.InboundTransferRequest) (*domain.InboundTransfer, error) {
	if !principal.IsBank() {
		return nil, apperror.ErrWrongPrincipal("bank")
	}
	fromBank := strings.ToLower(strings.TrimSpace(req.FromBank))
	if fromBank != principal.Issuer {
		return nil, apperror.ErrSignatureMismatch()
	}
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	req.FromBank = fromBank
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	key := req.PaymentID.String()

	// Layer 1: cache
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_id", key).Msg("idempotency cache check failed, falling through to DB")
	}
	if cached != nil {
		prior := &domain.InboundTransfer{}
		if err := json.Unmarshal(cached, prior); err == nil {
			return s.duplicate(prior, req)
		}
	}

	// Layer 2: DB
	prior, err := s.inbound.Get(ctx, req.PaymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if prior != nil {
		return s.duplicate(prior, req)
	}

	transfer, err := s.credit(ctx, req)
	if errors.Is(err, ports.ErrAlreadyExists) {
		prior, err := s.inbound.Get(ctx, req.PaymentID)
		if err != nil || prior == nil {
			return nil, apperror.InternalError(fmt.Errorf("reread inbound transfer: %w", err))
		}
		return s.duplicate(prior, req)
	}
	if err != nil {
		metrics.InboundTransfers.WithLabelValues(fromBank, "rejected").Inc()
		return nil, err
	}

	if data, err := json.Marshal(transfer); err == nil {
		if err := s.idempCache.Set(ctx, key, data, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("payment_id", key).Msg("failed to cache inbound transfer")
		}
	}

	metrics.InboundTransfers.WithLabelValues(fromBank, "credited").Inc()
	s.log.Info().
		Str("payment_id", key).
		Str("bank_code", fromBank).
		Str("to_account", transfer.ToAccount).
		Str("amount", transfer.Amount.String()).
		Msg("inbound transfer credited")
	return transfer, nil
}

// credit applies the transfer in one transaction. It returns
// ports.ErrAlreadyExists unwrapped when a concurrent delivery won.
func (s *SettlementServiceImpl) credit(ctx context.Context, req ports.InboundTransferRequest) (*domain.InboundTransfer, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	transfer := &domain.InboundTransfer{
		PaymentID:   req.PaymentID,
		FromBank:    req.FromBank,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      domain.PaymentSettlementCompleted,
		CreatedAt:   s.now(),
	}
	if err := s.inbound.Create(ctx, dbTx, transfer); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return nil, ports.ErrAlreadyExists
		}
		return nil, apperror.InternalError(fmt.Errorf("record inbound transfer: %w", err))
	}

	acct, err := s.accounts.GetByNumberForUpdate(ctx, dbTx, req.ToAccount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrInvalidDestination("destination account not found")
	}
	if !acct.IsActive() {
		return nil, apperror.ErrAccountInactive()
	}
	if !strings.EqualFold(acct.Currency, req.Currency) {
		return nil, apperror.ErrCurrencyMismatch()
	}

	balance := acct.Balance.Add(req.Amount)
	if err := s.accounts.UpdateBalance(ctx, dbTx, acct.Number, balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit account: %w", err))
	}
	desc := fmt.Sprintf("from %s/%s", req.FromBank, req.FromAccount)
	if req.Description != "" {
		desc += ": " + req.Description
	}
	if err := s.ledger.Create(ctx, dbTx, domain.NewLedgerEntry(acct.Number, req.PaymentID, domain.EntryCredit, req.Amount, balance, desc)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger credit: %w", err))
	}
	if _, err := s.capital.Credit(ctx, dbTx, req.FromBank, req.Amount); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return transfer, nil
}

// duplicate acknowledges a redelivery, or rejects an id reused for a
// different transfer.
func (s *SettlementServiceImpl) duplicate(prior *domain.InboundTransfer, req ports.InboundTransferRequest) (*domain.InboundTransfer, error) {
	if prior.FromBank != req.FromBank || prior.ToAccount != req.ToAccount ||
		!prior.Amount.Equal(req.Amount) || !strings.EqualFold(prior.Currency, req.Currency) {
		metrics.InboundTransfers.WithLabelValues(req.FromBank, "conflict").Inc()
		return nil, apperror.ErrDuplicatePayment()
	}
	metrics.InboundTransfers.WithLabelValues(req.FromBank, "duplicate").Inc()
	s.log.Info().Str("payment_id", prior.PaymentID.String()).Str("bank_code", prior.FromBank).Msg("duplicate inbound transfer acknowledged")
	return prior, nil
}
