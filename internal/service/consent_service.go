package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ConsentConfig controls consent lifetimes.
type ConsentConfig struct {
	Horizon     time.Duration
	AutoApprove bool
}

// ConsentServiceImpl implements ports.ConsentService.
type ConsentServiceImpl struct {
	repo       ports.ConsentRepository
	clients    ports.ClientRepository
	transactor ports.DBTransactor
	cfg        ConsentConfig
	now        func() time.Time
	log        zerolog.Logger
}

// NewConsentService creates a new ConsentServiceImpl.
func NewConsentService(
	repo ports.ConsentRepository,
	clients ports.ClientRepository,
	transactor ports.DBTransactor,
	cfg ConsentConfig,
	log zerolog.Logger,
) *ConsentServiceImpl {
	return &ConsentServiceImpl{
		repo:       repo,
		clients:    clients,
		transactor: transactor,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// RequestConsent records a peer bank's request for access to a client's data.
// With auto-approve enabled the consent is granted in the same transaction.
func (s *ConsentServiceImpl) RequestConsent(ctx context.Context, in ports.ConsentRequestInput) (*domain.ConsentRequest, error) {
	perms, err := domain.ParsePermissions(in.Permissions)
	if err != nil {
		return nil, apperror.ErrInvalidScope(err.Error())
	}
	if in.Limits != nil {
		if !slices.Contains(perms, domain.PermInitiatePayment) {
			return nil, apperror.ErrInvalidScope("payment_limits require the InitiatePayment permission")
		}
		if err := in.Limits.Normalize(); err != nil {
			return nil, apperror.ErrInvalidScope(err.Error())
		}
	}
	bank := strings.ToLower(strings.TrimSpace(in.RequestingBank))
	if !domain.ValidBankCode(bank) {
		return nil, apperror.Validation("invalid requesting bank code")
	}

	client, err := s.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}

	now := s.now()
	req := &domain.ConsentRequest{
		ID:             uuid.New(),
		ClientID:       client.ID,
		RequestingBank: bank,
		Permissions:    perms,
		Reason:         in.Reason,
		Limits:         in.Limits,
		Status:         domain.ConsentRequestPending,
		CreatedAt:      now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.repo.CreateRequest(ctx, dbTx, req); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create consent request: %w", err))
	}

	if s.cfg.AutoApprove {
		consent := domain.NewConsent(req, now, s.cfg.Horizon)
		if err := s.repo.CreateConsent(ctx, dbTx, consent); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create consent: %w", err))
		}
		req.Status = domain.ConsentRequestApproved
		req.ConsentID = &consent.ID
		req.DecidedAt = &now
		if err := s.repo.UpdateRequest(ctx, dbTx, req); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update consent request: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("client_id", req.ClientID).
		Str("bank_code", bank).
		Str("status", string(req.Status)).
		Msg("consent requested")

	return req, nil
}

// Approve grants a pending request and creates its consent.
func (s *ConsentServiceImpl) Approve(ctx context.Context, clientID string, requestID uuid.UUID) (*domain.Consent, error) {
	var consent *domain.Consent
	err := s.decide(ctx, clientID, requestID, func(req *domain.ConsentRequest, now time.Time) error {
		consent = domain.NewConsent(req, now, s.cfg.Horizon)
		req.Status = domain.ConsentRequestApproved
		req.ConsentID = &consent.ID
		return nil
	}, func(dbTx pgx.Tx) error {
		if err := s.repo.CreateConsent(ctx, dbTx, consent); err != nil {
			return apperror.InternalError(fmt.Errorf("create consent: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("consent_id", consent.ID.String()).
		Str("client_id", clientID).
		Str("bank_code", consent.GrantedTo).
		Msg("consent approved")
	return consent, nil
}

// Reject closes a pending request without granting anything.
func (s *ConsentServiceImpl) Reject(ctx context.Context, clientID string, requestID uuid.UUID) (*domain.ConsentRequest, error) {
	var decided *domain.ConsentRequest
	err := s.decide(ctx, clientID, requestID, func(req *domain.ConsentRequest, _ time.Time) error {
		req.Status = domain.ConsentRequestRejected
		decided = req
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", requestID.String()).Str("client_id", clientID).Msg("consent request rejected")
	return decided, nil
}

// decide runs a Pending -> terminal transition under the request's row lock.
func (s *ConsentServiceImpl) decide(
	ctx context.Context,
	clientID string,
	requestID uuid.UUID,
	transition func(req *domain.ConsentRequest, now time.Time) error,
	persist func(dbTx pgx.Tx) error,
) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	req, err := s.repo.GetRequestForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock consent request: %w", err))
	}
	if req == nil || req.ClientID != clientID {
		return apperror.ErrConsentRequestNotFound()
	}
	if !req.IsPending() {
		return apperror.ErrInvalidTransition(fmt.Sprintf("consent request is already %s", req.Status))
	}

	now := s.now()
	if err := transition(req, now); err != nil {
		return err
	}
	req.DecidedAt = &now

	if persist != nil {
		if err := persist(dbTx); err != nil {
			return err
		}
	}
	if err := s.repo.UpdateRequest(ctx, dbTx, req); err != nil {
		return apperror.InternalError(fmt.Errorf("update consent request: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// Revoke moves an Authorised consent to Revoked. Expired and revoked
// consents cannot be revoked again.
func (s *ConsentServiceImpl) Revoke(ctx context.Context, clientID string, consentID uuid.UUID) (*domain.Consent, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	consent, err := s.repo.GetConsentForUpdate(ctx, dbTx, consentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock consent: %w", err))
	}
	if consent == nil || consent.ClientID != clientID {
		return nil, apperror.ErrConsentNotFound()
	}

	now := s.now()
	if status := consent.EffectiveStatus(now); status != domain.ConsentAuthorised {
		return nil, apperror.ErrInvalidTransition(fmt.Sprintf("consent is %s", status))
	}
	if err := s.repo.UpdateConsentStatus(ctx, dbTx, consentID, domain.ConsentRevoked, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("revoke consent: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	consent.Status = domain.ConsentRevoked
	consent.RevokedAt = &now

	s.log.Info().
		Str("consent_id", consentID.String()).
		Str("client_id", clientID).
		Str("bank_code", consent.GrantedTo).
		Msg("consent revoked")
	return consent, nil
}

// VerifyConsent reads committed state only, so a revoke that has committed
// is always observed.
func (s *ConsentServiceImpl) VerifyConsent(ctx context.Context, consentID uuid.UUID, bank string, perm domain.Permission) (*domain.Consent, error) {
	consent, err := s.repo.GetConsent(ctx, consentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get consent: %w", err))
	}

	if reason := consent.Check(strings.ToLower(bank), perm, s.now()); reason != domain.DenyNone {
		return nil, consentDenial(reason, perm)
	}
	return consent, nil
}

func consentDenial(reason domain.DenyReason, perm domain.Permission) error {
	switch reason {
	case domain.DenyNotFound:
		return apperror.ErrConsentNotFound()
	case domain.DenyWrongBank:
		return apperror.ErrConsentWrongBank()
	case domain.DenyExpired:
		return apperror.ErrConsentExpired()
	case domain.DenyInsufficientScope:
		return apperror.ErrInsufficientScope(string(perm))
	default:
		return apperror.ErrConsentRevoked()
	}
}

// GetRequest lets the requesting bank poll the outcome of its request.
func (s *ConsentServiceImpl) GetRequest(ctx context.Context, bank string, requestID uuid.UUID) (*domain.ConsentRequest, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get consent request: %w", err))
	}
	if req == nil || req.RequestingBank != strings.ToLower(bank) {
		return nil, apperror.ErrConsentRequestNotFound()
	}
	return req, nil
}

// ListPendingRequests returns requests awaiting the client's decision.
func (s *ConsentServiceImpl) ListPendingRequests(ctx context.Context, clientID string) ([]domain.ConsentRequest, error) {
	reqs, err := s.repo.ListRequestsByClient(ctx, clientID, domain.ConsentRequestPending)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list consent requests: %w", err))
	}
	return reqs, nil
}

// ListConsents returns the client's consents with their computed status.
func (s *ConsentServiceImpl) ListConsents(ctx context.Context, clientID string) ([]domain.Consent, error) {
	consents, err := s.repo.ListConsentsByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list consents: %w", err))
	}
	now := s.now()
	for i := range consents {
		consents[i].Status = consents[i].EffectiveStatus(now)
	}
	return consents, nil
}
