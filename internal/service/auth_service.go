package service

import (
	"context"
	"fmt"
	"time"

	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService for bank clients.
type AuthServiceImpl struct {
	clients  ports.ClientRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(clients ports.ClientRepository, hashSvc ports.HashService, tokenSvc ports.TokenService, log zerolog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		clients:  clients,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// Login validates credentials and returns a client token.
func (s *AuthServiceImpl) Login(ctx context.Context, clientID, password string) (string, time.Time, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find client: %w", err))
	}
	if client == nil || client.PasswordHash == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, client.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("stored password hash is unreadable")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.IssueClientToken(client.ID)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("issue token: %w", err))
	}
	return token, expiry, nil
}
