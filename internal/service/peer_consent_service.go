package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PeerConsentServiceImpl manages consents this bank holds at peer banks on
// behalf of its own clients.
type PeerConsentServiceImpl struct {
	repo      ports.PeerConsentRepository
	clients   ports.ClientRepository
	directory ports.PeerDirectory
	peers     ports.PeerClient
	tokens    ports.TokenService
	ownCode   string
	now       func() time.Time
	log       zerolog.Logger
}

// NewPeerConsentService creates a new PeerConsentServiceImpl.
func NewPeerConsentService(
	repo ports.PeerConsentRepository,
	clients ports.ClientRepository,
	directory ports.PeerDirectory,
	peers ports.PeerClient,
	tokens ports.TokenService,
	ownCode string,
	log zerolog.Logger,
) *PeerConsentServiceImpl {
	return &PeerConsentServiceImpl{
		repo:      repo,
		clients:   clients,
		directory: directory,
		peers:     peers,
		tokens:    tokens,
		ownCode:   strings.ToLower(ownCode),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// RequestPeerConsent asks a peer bank for access to the accounts its client
// peerClientID holds there.
func (s *PeerConsentServiceImpl) RequestPeerConsent(ctx context.Context, in ports.PeerConsentInput) (*domain.PeerConsent, error) {
	perms, err := domain.ParsePermissions(in.Permissions)
	if err != nil {
		return nil, apperror.ErrInvalidScope(err.Error())
	}
	if strings.TrimSpace(in.PeerClientID) == "" {
		return nil, apperror.Validation("peer_client_id is required")
	}
	bank := strings.ToLower(strings.TrimSpace(in.BankCode))
	peer, ok := s.directory.Lookup(bank)
	if !ok || bank == s.ownCode {
		return nil, apperror.ErrUnknownPeer(bank)
	}

	client, err := s.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}

	token, _, err := s.tokens.IssueBankToken()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue bank token: %w", err))
	}

	reply, err := s.peers.RequestConsent(ctx, peer, token, ports.PeerConsentCall{
		PeerClientID:   in.PeerClientID,
		RequestingBank: s.ownCode,
		Permissions:    perms,
		Reason:         in.Reason,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("bank_code", bank).Msg("peer consent request failed")
		return nil, apperror.ErrPeerUnavailable(bank, err)
	}
	status, err := domain.NormalizePeerStatus(reply.Status)
	if err != nil {
		return nil, apperror.ErrPeerUnavailable(bank, err)
	}

	now := s.now()
	pc := &domain.PeerConsent{
		ID:            uuid.New(),
		ClientID:      client.ID,
		BankCode:      bank,
		PeerClientID:  in.PeerClientID,
		PeerRequestID: reply.RequestID,
		PeerConsentID: reply.ConsentID,
		Permissions:   perms,
		Status:        status,
		ExpiresAt:     reply.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, pc); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save peer consent: %w", err))
	}

	s.log.Info().
		Str("peer_consent_id", pc.ID.String()).
		Str("client_id", pc.ClientID).
		Str("bank_code", bank).
		Str("status", string(status)).
		Msg("peer consent requested")
	return pc, nil
}

// SyncPeerConsent polls the peer for the outcome of a pending request.
// Consents that are no longer pending are returned unchanged.
func (s *PeerConsentServiceImpl) SyncPeerConsent(ctx context.Context, clientID string, id uuid.UUID) (*domain.PeerConsent, error) {
	pc, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	if pc.Status != domain.PeerConsentPending {
		return pc, nil
	}

	peer, ok := s.directory.Lookup(pc.BankCode)
	if !ok {
		return nil, apperror.ErrUnknownPeer(pc.BankCode)
	}
	token, _, err := s.tokens.IssueBankToken()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue bank token: %w", err))
	}
	reply, err := s.peers.GetConsentRequest(ctx, peer, token, pc.PeerRequestID)
	if err != nil {
		return nil, apperror.ErrPeerUnavailable(pc.BankCode, err)
	}
	status, err := domain.NormalizePeerStatus(reply.Status)
	if err != nil {
		return nil, apperror.ErrPeerUnavailable(pc.BankCode, err)
	}

	pc.Status = status
	if reply.ConsentID != "" {
		pc.PeerConsentID = reply.ConsentID
	}
	if reply.ExpiresAt != nil {
		pc.ExpiresAt = reply.ExpiresAt
	}
	pc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, pc); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update peer consent: %w", err))
	}

	s.log.Info().
		Str("peer_consent_id", pc.ID.String()).
		Str("bank_code", pc.BankCode).
		Str("status", string(pc.Status)).
		Msg("peer consent synced")
	return pc, nil
}

// HeldConsents lists every peer consent recorded for the client.
func (s *PeerConsentServiceImpl) HeldConsents(ctx context.Context, clientID string) ([]domain.PeerConsent, error) {
	list, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list peer consents: %w", err))
	}
	return list, nil
}

// MarkPeerConsentRevoked records that the consent is no longer usable at the
// peer. The aggregator stops reading through it.
func (s *PeerConsentServiceImpl) MarkPeerConsentRevoked(ctx context.Context, clientID string, id uuid.UUID) error {
	pc, err := s.owned(ctx, clientID, id)
	if err != nil {
		return err
	}
	if pc.Status == domain.PeerConsentRevoked {
		return nil
	}
	pc.Status = domain.PeerConsentRevoked
	pc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, pc); err != nil {
		return apperror.InternalError(fmt.Errorf("update peer consent: %w", err))
	}
	s.log.Info().Str("peer_consent_id", id.String()).Str("bank_code", pc.BankCode).Msg("peer consent revoked")
	return nil
}

func (s *PeerConsentServiceImpl) owned(ctx context.Context, clientID string, id uuid.UUID) (*domain.PeerConsent, error) {
	pc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get peer consent: %w", err))
	}
	if pc == nil || pc.ClientID != clientID {
		return nil, apperror.ErrConsentNotFound()
	}
	return pc, nil
}
