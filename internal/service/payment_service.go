package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// reconcileBatch caps how many stale transfers one reconciler pass re-drives.
const reconcileBatch = 100

// PaymentConfig controls the remote settlement leg.
type PaymentConfig struct {
	BankCode      string
	RemoteTimeout time.Duration
	RetryDelay    time.Duration
}

// PaymentDeps groups the collaborators of the payment router.
type PaymentDeps struct {
	Accounts   ports.AccountRepository
	Ledger     ports.LedgerRepository
	Payments   ports.PaymentRepository
	Capital    ports.CapitalLedger
	Consents   ports.ConsentService
	// ConsentRepo is locked by payments made under a consent.
	ConsentRepo ports.ConsentRepository
	Directory   ports.PeerDirectory
	Peers       ports.PeerClient
	Tokens      ports.TokenService
	Cache       ports.IdempotencyCache
	Transactor  ports.DBTransactor
}

// PaymentServiceImpl implements ports.PaymentService. Domestic payments
// settle in a single transaction. Interbank payments debit locally, deliver
// to the destination bank, and either complete or compensate.
type PaymentServiceImpl struct {
	accounts    ports.AccountRepository
	ledger      ports.LedgerRepository
	payments    ports.PaymentRepository
	capital     ports.CapitalLedger
	consents    ports.ConsentService
	consentRepo ports.ConsentRepository
	directory   ports.PeerDirectory
	peers       ports.PeerClient
	tokens      ports.TokenService
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	cfg         PaymentConfig
	now         func() time.Time
	log         zerolog.Logger

	// inflight holds ids of payments whose remote leg this process is
	// driving right now. The reconciler never touches them.
	inflight sync.Map
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(deps PaymentDeps, cfg PaymentConfig, log zerolog.Logger) *PaymentServiceImpl {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	cfg.BankCode = strings.ToLower(cfg.BankCode)
	return &PaymentServiceImpl{
		accounts:    deps.Accounts,
		ledger:      deps.Ledger,
		payments:    deps.Payments,
		capital:     deps.Capital,
		consents:    deps.Consents,
		consentRepo: deps.ConsentRepo,
		directory:   deps.Directory,
		peers:       deps.Peers,
		tokens:      deps.Tokens,
		idempCache:  deps.Cache,
		transactor:  deps.Transactor,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// paymentIntent is a validated payment request.
type paymentIntent struct {
	id          uuid.UUID
	ownerID     string
	initiatedBy string
	consentID   *uuid.UUID
	consentBank string
	from        string
	dest        domain.DestinationRef
	peer        domain.Peer
	amount      decimal.Decimal
	currency    string
	description string
}

// InitiatePayment moves money out of a local account. Replaying a payment id
// with the same parameters returns the recorded payment without side effects.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req ports.PaymentRequest) (*domain.Payment, error) {
	intent, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	// Layer 1: cache of terminal payments
	if p := s.cachedPayment(ctx, intent.id); p != nil {
		return s.replay(p, intent)
	}

	// Layer 2: DB
	existing, err := s.payments.GetByID(ctx, intent.id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if existing != nil {
		return s.replay(existing, intent)
	}

	src, err := s.accounts.GetByNumber(ctx, intent.from)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if src == nil || src.ClientID != intent.ownerID {
		return nil, apperror.ErrNotFound("account")
	}
	if !src.IsActive() {
		return nil, apperror.ErrAccountInactive()
	}
	if !strings.EqualFold(src.Currency, intent.currency) {
		return nil, apperror.ErrCurrencyMismatch()
	}

	if intent.dest.IsDomestic() {
		return s.payDomestic(ctx, intent)
	}
	return s.payInterbank(ctx, intent)
}

// validate checks the request shape and authorizes the principal.
func (s *PaymentServiceImpl) validate(ctx context.Context, req ports.PaymentRequest) (*paymentIntent, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, apperror.ErrCurrencyMismatch()
	}
	from := strings.TrimSpace(req.FromAccount)
	if from == "" {
		return nil, apperror.Validation("from_account is required")
	}

	dest, err := domain.ParseDestination(req.ToBank, req.ToAccount, s.cfg.BankCode)
	if err != nil {
		return nil, apperror.ErrInvalidDestination(err.Error())
	}
	intent := &paymentIntent{
		id:          uuid.New(),
		from:        from,
		dest:        dest,
		amount:      req.Amount,
		currency:    currency,
		description: req.Description,
	}
	if req.PaymentID != nil && *req.PaymentID != uuid.Nil {
		intent.id = *req.PaymentID
	}

	if dest.IsDomestic() {
		if dest.Account == from {
			return nil, apperror.ErrInvalidDestination("source and destination accounts are the same")
		}
	} else {
		peer, ok := s.directory.Lookup(dest.BankCode)
		if !ok {
			return nil, apperror.ErrInvalidDestination(fmt.Sprintf("bank %q is not part of the federation", dest.BankCode))
		}
		intent.peer = peer
	}

	switch {
	case req.Principal.IsClient():
		intent.ownerID = req.Principal.Subject
		intent.initiatedBy = "client:" + req.Principal.Subject
	case req.Principal.IsBank():
		if req.ConsentID == nil {
			return nil, apperror.ErrConsentNotFound()
		}
		consent, err := s.consents.VerifyConsent(ctx, *req.ConsentID, req.Principal.Issuer, domain.PermInitiatePayment)
		if err != nil {
			return nil, err
		}
		intent.ownerID = consent.ClientID
		intent.initiatedBy = "bank:" + req.Principal.Issuer
		intent.consentID = req.ConsentID
		intent.consentBank = strings.ToLower(req.Principal.Issuer)
	default:
		return nil, apperror.ErrWrongPrincipal("client or bank")
	}
	return intent, nil
}

// enforceConsent re-checks the consent a bank pays under and applies its
// payment limits. The consent row stays locked until dbTx ends, so payments
// under one consent are counted one after another. It runs before any
// account lock.
func (s *PaymentServiceImpl) enforceConsent(ctx context.Context, dbTx pgx.Tx, intent *paymentIntent) error {
	if intent.consentID == nil {
		return nil
	}
	consent, err := s.consentRepo.GetConsentForUpdate(ctx, dbTx, *intent.consentID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock consent: %w", err))
	}
	now := s.now()
	if reason := consent.Check(intent.consentBank, domain.PermInitiatePayment, now); reason != domain.DenyNone {
		return consentDenial(reason, domain.PermInitiatePayment)
	}
	if consent.Limits == nil {
		return nil
	}

	// A replayed id is resolved by the insert that follows, not counted again.
	existing, err := s.payments.GetByID(ctx, intent.id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find payment: %w", err))
	}
	if existing != nil {
		return nil
	}

	usage, err := s.payments.ConsentUsage(ctx, dbTx, consent.ID, consent.Limits.PeriodType.Start(now))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("consent usage: %w", err))
	}
	if msg := consent.Limits.Allow(intent.amount, usage, now); msg != "" {
		s.log.Info().
			Str("consent_id", consent.ID.String()).
			Str("bank_code", intent.consentBank).
			Str("amount", intent.amount.String()).
			Str("reason", msg).
			Msg("payment refused by consent limits")
		return apperror.ErrConsentLimitExceeded(msg)
	}
	return nil
}

// replay resolves a request whose payment id is already recorded.
func (s *PaymentServiceImpl) replay(p *domain.Payment, intent *paymentIntent) (*domain.Payment, error) {
	if p.ClientID != intent.ownerID || !p.SameParameters(intent.from, intent.dest, intent.amount, intent.currency) {
		return nil, apperror.ErrDuplicatePayment()
	}
	s.log.Info().Str("payment_id", p.ID.String()).Str("status", string(p.Status)).Msg("payment replayed")
	return s.outcome(p)
}

// outcome surfaces a rejected interbank payment as PAY_009 alongside the
// recorded payment.
func (s *PaymentServiceImpl) outcome(p *domain.Payment) (*domain.Payment, error) {
	if p.Status == domain.PaymentRejected {
		return p, apperror.ErrSettlementRejected(errors.New(p.FailureReason))
	}
	return p, nil
}

func (s *PaymentServiceImpl) newPayment(intent *paymentIntent, route domain.PaymentRoute, status domain.PaymentStatus) *domain.Payment {
	now := s.now()
	return &domain.Payment{
		ID:          intent.id,
		ClientID:    intent.ownerID,
		FromAccount: intent.from,
		ToBank:      intent.dest.BankCode,
		ToAccount:   intent.dest.Account,
		Amount:      intent.amount,
		Currency:    intent.currency,
		Description: intent.description,
		Route:       route,
		Status:      status,
		InitiatedBy: intent.initiatedBy,
		ConsentID:   intent.consentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// payDomestic debits the source and credits the destination in one
// transaction. Rows are locked in account-number order so two opposite
// transfers cannot deadlock.
func (s *PaymentServiceImpl) payDomestic(ctx context.Context, intent *paymentIntent) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.enforceConsent(ctx, dbTx, intent); err != nil {
		return nil, err
	}

	first, second := intent.from, intent.dest.Account
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*domain.Account, 2)
	for _, number := range []string{first, second} {
		acct, err := s.accounts.GetByNumberForUpdate(ctx, dbTx, number)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
		}
		locked[number] = acct
	}
	src, dst := locked[intent.from], locked[intent.dest.Account]

	if src == nil || src.ClientID != intent.ownerID {
		return nil, apperror.ErrNotFound("account")
	}
	if dst == nil {
		return nil, apperror.ErrInvalidDestination("destination account not found")
	}
	if !src.IsActive() || !dst.IsActive() {
		return nil, apperror.ErrAccountInactive()
	}
	if !strings.EqualFold(dst.Currency, intent.currency) || !strings.EqualFold(src.Currency, intent.currency) {
		return nil, apperror.ErrCurrencyMismatch()
	}
	if !src.CanDebit(intent.amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	payment := s.newPayment(intent, domain.RouteDomestic, domain.PaymentSettlementCompleted)
	if err := s.payments.Create(ctx, dbTx, payment); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return s.resolveRace(ctx, intent)
		}
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	srcBalance := src.Balance.Sub(intent.amount)
	dstBalance := dst.Balance.Add(intent.amount)
	if err := s.accounts.UpdateBalance(ctx, dbTx, src.Number, srcBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit account: %w", err))
	}
	if err := s.accounts.UpdateBalance(ctx, dbTx, dst.Number, dstBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit account: %w", err))
	}
	if err := s.ledger.Create(ctx, dbTx, domain.NewLedgerEntry(src.Number, payment.ID, domain.EntryDebit, intent.amount, srcBalance, intent.description)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger debit: %w", err))
	}
	if err := s.ledger.Create(ctx, dbTx, domain.NewLedgerEntry(dst.Number, payment.ID, domain.EntryCredit, intent.amount, dstBalance, intent.description)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger credit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.remember(ctx, payment)
	metrics.Payments.WithLabelValues(string(domain.RouteDomestic), string(payment.Status)).Inc()
	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("from_account", payment.FromAccount).
		Str("to_account", payment.ToAccount).
		Str("amount", payment.Amount.String()).
		Msg("domestic payment settled")

	return payment, nil
}

// payInterbank runs the local debit, the remote delivery and the final
// transition.
func (s *PaymentServiceImpl) payInterbank(ctx context.Context, intent *paymentIntent) (*domain.Payment, error) {
	payment, fresh, err := s.debitForTransfer(ctx, intent)
	if err != nil || !fresh {
		return payment, err
	}

	// From here the debit is committed. The remote leg and its resolution
	// must finish even if the caller goes away.
	s.inflight.Store(payment.ID, struct{}{})
	defer s.inflight.Delete(payment.ID)
	settled, err := s.settleRemote(context.WithoutCancel(ctx), payment, intent.peer)
	if err != nil {
		return nil, err
	}
	return s.outcome(settled)
}

// debitForTransfer commits the local half of an interbank payment: source
// debit, capital debit, payment and transfer records in SettlementInProcess.
// fresh is false when a concurrent request with the same id won the insert.
func (s *PaymentServiceImpl) debitForTransfer(ctx context.Context, intent *paymentIntent) (payment *domain.Payment, fresh bool, err error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.enforceConsent(ctx, dbTx, intent); err != nil {
		return nil, false, err
	}

	src, err := s.accounts.GetByNumberForUpdate(ctx, dbTx, intent.from)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if src == nil || src.ClientID != intent.ownerID {
		return nil, false, apperror.ErrNotFound("account")
	}
	if !src.IsActive() {
		return nil, false, apperror.ErrAccountInactive()
	}
	if !src.CanDebit(intent.amount) {
		return nil, false, apperror.ErrInsufficientFunds()
	}

	payment = s.newPayment(intent, domain.RouteInterbank, domain.PaymentSettlementInProcess)
	if err := s.payments.Create(ctx, dbTx, payment); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			existing, err := s.resolveRace(ctx, intent)
			return existing, false, err
		}
		return nil, false, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	if _, err := s.capital.Debit(ctx, dbTx, intent.dest.BankCode, intent.amount); err != nil {
		return nil, false, err
	}

	balance := src.Balance.Sub(intent.amount)
	if err := s.accounts.UpdateBalance(ctx, dbTx, src.Number, balance); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("debit account: %w", err))
	}
	if err := s.ledger.Create(ctx, dbTx, domain.NewLedgerEntry(src.Number, payment.ID, domain.EntryDebit, intent.amount, balance, intent.description)); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("ledger debit: %w", err))
	}

	transfer := &domain.InterbankTransfer{
		PaymentID: payment.ID,
		FromBank:  s.cfg.BankCode,
		ToBank:    intent.dest.BankCode,
		Amount:    intent.amount,
		Currency:  intent.currency,
		Status:    domain.PaymentSettlementInProcess,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.CreatedAt,
	}
	if err := s.payments.CreateTransfer(ctx, dbTx, transfer); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("create transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("from_account", payment.FromAccount).
		Str("bank_code", payment.ToBank).
		Str("amount", payment.Amount.String()).
		Msg("interbank payment debited, settling")
	return payment, true, nil
}

// resolveRace handles a concurrent request that created the same payment id
// first. Its committed result decides the outcome.
func (s *PaymentServiceImpl) resolveRace(ctx context.Context, intent *paymentIntent) (*domain.Payment, error) {
	existing, err := s.payments.GetByID(ctx, intent.id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reread payment: %w", err))
	}
	if existing == nil {
		return nil, apperror.ErrDuplicatePayment()
	}
	return s.replay(existing, intent)
}

// settleRemote delivers the transfer at most twice and then completes or
// compensates the payment. ctx must not be tied to the caller.
func (s *PaymentServiceImpl) settleRemote(ctx context.Context, payment *domain.Payment, peer domain.Peer) (*domain.Payment, error) {
	attempts, deliverErr := s.deliver(ctx, payment, peer)
	if deliverErr == nil {
		return s.complete(ctx, payment.ID, attempts)
	}

	s.log.Warn().
		Err(deliverErr).
		Str("payment_id", payment.ID.String()).
		Str("bank_code", payment.ToBank).
		Int("attempts", attempts).
		Msg("remote settlement failed, compensating")
	return s.compensate(ctx, payment.ID, attempts, deliverErr)
}

// deliver calls the destination bank once and retries once on any failure.
// The payment id makes the retry safe at the receiver.
func (s *PaymentServiceImpl) deliver(ctx context.Context, payment *domain.Payment, peer domain.Peer) (int, error) {
	token, _, err := s.tokens.IssueBankToken()
	if err != nil {
		return 0, fmt.Errorf("issue bank token: %w", err)
	}
	delivery := ports.TransferDelivery{
		PaymentID:   payment.ID,
		FromBank:    s.cfg.BankCode,
		FromAccount: payment.FromAccount,
		ToAccount:   payment.ToAccount,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Description: payment.Description,
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if attempt > 1 && s.cfg.RetryDelay > 0 {
			time.Sleep(s.cfg.RetryDelay)
		}
		lastErr = s.deliverOnce(ctx, peer, token, delivery)
		if lastErr == nil {
			return attempt, nil
		}
		s.log.Debug().Err(lastErr).Str("payment_id", payment.ID.String()).Int("attempt", attempt).Msg("delivery attempt failed")
	}
	return 2, lastErr
}

func (s *PaymentServiceImpl) deliverOnce(ctx context.Context, peer domain.Peer, token string, d ports.TransferDelivery) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
	defer cancel()

	ack, err := s.peers.DeliverTransfer(attemptCtx, peer, token, d)
	if err != nil {
		return err
	}
	if ack.Status != domain.PaymentSettlementCompleted {
		return fmt.Errorf("peer %s answered status %s", peer.Code, ack.Status)
	}
	return nil
}

// complete moves an in-process payment to SettlementCompleted. A payment
// that is already terminal is returned as recorded.
func (s *PaymentServiceImpl) complete(ctx context.Context, id uuid.UUID, attempts int) (*domain.Payment, error) {
	return s.finalize(ctx, id, func(dbTx pgx.Tx, p *domain.Payment, transfer *domain.InterbankTransfer) error {
		now := s.now()
		p.Status = domain.PaymentSettlementCompleted
		transfer.SettledAt = &now
		return nil
	}, attempts, "")
}

// compensate credits back the source account and the capital position and
// marks the payment Rejected.
func (s *PaymentServiceImpl) compensate(ctx context.Context, id uuid.UUID, attempts int, cause error) (*domain.Payment, error) {
	reason := cause.Error()
	p, err := s.finalize(ctx, id, func(dbTx pgx.Tx, p *domain.Payment, _ *domain.InterbankTransfer) error {
		src, err := s.accounts.GetByNumberForUpdate(ctx, dbTx, p.FromAccount)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock account: %w", err))
		}
		if src == nil {
			return apperror.InternalError(fmt.Errorf("source account %s vanished", p.FromAccount))
		}
		if _, err := s.capital.Credit(ctx, dbTx, p.ToBank, p.Amount); err != nil {
			return err
		}
		balance := src.Balance.Add(p.Amount)
		if err := s.accounts.UpdateBalance(ctx, dbTx, src.Number, balance); err != nil {
			return apperror.InternalError(fmt.Errorf("refund account: %w", err))
		}
		entry := domain.NewLedgerEntry(src.Number, p.ID, domain.EntryCredit, p.Amount, balance, "compensation: "+reason)
		if err := s.ledger.Create(ctx, dbTx, entry); err != nil {
			return apperror.InternalError(fmt.Errorf("ledger compensation: %w", err))
		}
		p.Status = domain.PaymentRejected
		p.FailureReason = reason
		return nil
	}, attempts, reason)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentRejected {
		metrics.Compensations.Inc()
	}
	return p, nil
}

// finalize locks the payment and applies a terminal transition to it and
// its transfer in one transaction.
func (s *PaymentServiceImpl) finalize(
	ctx context.Context,
	id uuid.UUID,
	apply func(dbTx pgx.Tx, p *domain.Payment, transfer *domain.InterbankTransfer) error,
	attempts int,
	reason string,
) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	p, err := s.payments.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if p.IsTerminal() {
		return p, nil
	}
	transfer, err := s.payments.GetTransfer(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transfer: %w", err))
	}
	if transfer == nil {
		return nil, apperror.InternalError(fmt.Errorf("transfer for payment %s missing", id))
	}

	if err := apply(dbTx, p, transfer); err != nil {
		return nil, err
	}

	if err := s.payments.UpdateStatus(ctx, dbTx, id, p.Status, reason); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payment: %w", err))
	}
	transfer.Status = p.Status
	transfer.Attempts += attempts
	transfer.UpdatedAt = s.now()
	if err := s.payments.UpdateTransfer(ctx, dbTx, transfer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	p.UpdatedAt = transfer.UpdatedAt

	s.remember(ctx, p)
	metrics.Payments.WithLabelValues(string(domain.RouteInterbank), string(p.Status)).Inc()
	s.log.Info().
		Str("payment_id", id.String()).
		Str("bank_code", p.ToBank).
		Str("status", string(p.Status)).
		Int("attempts", transfer.Attempts).
		Msg("interbank payment finalized")
	return p, nil
}

// GetPayment returns a payment visible to the principal. Clients see their
// own payments; banks see payments they initiated.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Payment, error) {
	p := s.cachedPayment(ctx, id)
	if p == nil {
		var err error
		p, err = s.payments.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get payment: %w", err))
		}
	}
	if p == nil {
		return nil, apperror.ErrNotFound("payment")
	}

	switch {
	case principal.IsClient() && p.ClientID == principal.Subject:
		return p, nil
	case principal.IsBank() && p.InitiatedBy == "bank:"+principal.Issuer:
		return p, nil
	default:
		return nil, apperror.ErrNotFound("payment")
	}
}

// ReconcilePending re-drives interbank transfers left in SettlementInProcess
// for longer than staleAfter, for example after a crash between the debit
// and the final transition. It returns how many reached a terminal state.
// Transfers with a live delivery in this process are skipped, and each one
// is claimed under the payment lock before it is re-driven.
func (s *PaymentServiceImpl) ReconcilePending(ctx context.Context, staleAfter time.Duration) (int, error) {
	cutoff := s.now().Add(-staleAfter)
	stale, err := s.payments.ListStaleTransfers(ctx, domain.PaymentSettlementInProcess, cutoff, reconcileBatch)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("list stale transfers: %w", err))
	}

	resolved := 0
	for _, t := range stale {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}
		if s.reconcileOne(ctx, t, cutoff) {
			resolved++
		}
	}

	if len(stale) > 0 {
		s.log.Info().Int("stale", len(stale)).Int("resolved", resolved).Msg("reconciler pass finished")
	}
	return resolved, nil
}

func (s *PaymentServiceImpl) reconcileOne(ctx context.Context, t domain.InterbankTransfer, cutoff time.Time) bool {
	if _, busy := s.inflight.LoadOrStore(t.PaymentID, struct{}{}); busy {
		s.log.Debug().Str("payment_id", t.PaymentID.String()).Msg("reconciler skipped payment with live delivery")
		return false
	}
	defer s.inflight.Delete(t.PaymentID)

	p, err := s.claimStale(ctx, t.PaymentID, cutoff)
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", t.PaymentID.String()).Msg("reconciler could not claim payment")
		return false
	}
	if p == nil {
		return false
	}

	var settled *domain.Payment
	peer, ok := s.directory.Lookup(t.ToBank)
	if !ok {
		settled, err = s.compensate(context.WithoutCancel(ctx), p.ID, 0, fmt.Errorf("bank %s left the federation", t.ToBank))
	} else {
		settled, err = s.settleRemote(context.WithoutCancel(ctx), p, peer)
	}
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", p.ID.String()).Msg("reconciler could not finalize payment")
		return false
	}
	return settled.IsTerminal()
}

// claimStale takes the lease on a stale transfer by bumping its updated_at
// under the payment row lock. It returns nil when the payment is already
// terminal or someone touched the transfer after cutoff.
func (s *PaymentServiceImpl) claimStale(ctx context.Context, id uuid.UUID, cutoff time.Time) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	p, err := s.payments.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, fmt.Errorf("lock payment: %w", err)
	}
	if p == nil || p.IsTerminal() {
		return nil, nil
	}
	transfer, err := s.payments.GetTransfer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if transfer == nil || !transfer.UpdatedAt.Before(cutoff) {
		return nil, nil
	}

	transfer.UpdatedAt = s.now()
	if err := s.payments.UpdateTransfer(ctx, dbTx, transfer); err != nil {
		return nil, fmt.Errorf("claim transfer: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return p, nil
}

// remember caches a terminal payment (best-effort).
func (s *PaymentServiceImpl) remember(ctx context.Context, p *domain.Payment) {
	if !p.IsTerminal() {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_id", p.ID.String()).Msg("failed to marshal payment for cache")
		return
	}
	if err := s.idempCache.Set(ctx, p.ID.String(), data, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("payment_id", p.ID.String()).Msg("failed to cache payment")
	}
}

func (s *PaymentServiceImpl) cachedPayment(ctx context.Context, id uuid.UUID) *domain.Payment {
	data, err := s.idempCache.Get(ctx, id.String())
	if err != nil {
		s.log.Warn().Err(err).Str("payment_id", id.String()).Msg("idempotency cache check failed, falling through to DB")
		return nil
	}
	if data == nil {
		return nil
	}
	p := &domain.Payment{}
	if err := json.Unmarshal(data, p); err != nil {
		s.log.Warn().Err(err).Str("payment_id", id.String()).Msg("corrupt cached payment ignored")
		return nil
	}
	return p
}
