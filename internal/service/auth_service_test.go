package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports/mocks"
	"federated-bank/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (*AuthServiceImpl, *mocks.MockClientRepository, *mocks.MockHashService, *mocks.MockTokenService) {
	ctrl := gomock.NewController(t)
	clients := mocks.NewMockClientRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	return NewAuthService(clients, hashSvc, tokenSvc, zerolog.Nop()), clients, hashSvc, tokenSvc
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, clients, hashSvc, tokenSvc := setupAuthService(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	clients.EXPECT().GetByID(ctx, "cli-1").Return(&domain.Client{ID: "cli-1", PasswordHash: "$argon2id$hash"}, nil)
	hashSvc.EXPECT().Verify("secret", "$argon2id$hash").Return(true, nil)
	tokenSvc.EXPECT().IssueClientToken("cli-1").Return("jwt", expiry, nil)

	token, exp, err := svc.Login(ctx, "cli-1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown client", func(t *testing.T) {
		svc, clients, _, _ := setupAuthService(t)
		clients.EXPECT().GetByID(ctx, "ghost").Return(nil, nil)
		_, _, err := svc.Login(ctx, "ghost", "x")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials())
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, clients, hashSvc, _ := setupAuthService(t)
		clients.EXPECT().GetByID(ctx, "cli-1").Return(&domain.Client{ID: "cli-1", PasswordHash: "h"}, nil)
		hashSvc.EXPECT().Verify("bad", "h").Return(false, nil)
		_, _, err := svc.Login(ctx, "cli-1", "bad")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials())
	})

	t.Run("corrupt hash", func(t *testing.T) {
		svc, clients, hashSvc, _ := setupAuthService(t)
		clients.EXPECT().GetByID(ctx, "cli-1").Return(&domain.Client{ID: "cli-1", PasswordHash: "h"}, nil)
		hashSvc.EXPECT().Verify("x", "h").Return(false, errors.New("invalid hash format"))
		_, _, err := svc.Login(ctx, "cli-1", "x")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials())
	})

	t.Run("repository down", func(t *testing.T) {
		svc, clients, _, _ := setupAuthService(t)
		clients.EXPECT().GetByID(ctx, "cli-1").Return(nil, errors.New("conn refused"))
		_, _, err := svc.Login(ctx, "cli-1", "x")
		assert.Equal(t, "SYS_001", apperror.CodeOf(err))
	})
}
