package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"federated-bank/internal/adapter/storage/memory"
	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditService_PersistsInOrder(t *testing.T) {
	repo := memory.NewAuditRepo(memory.NewStore())
	svc := NewAuditService(repo, 16, zerolog.Nop())

	svc.Log(context.Background(), &domain.AuditLog{
		ActorType: domain.PrincipalClient, Actor: "cli-1",
		Action: domain.AuditActionPayment, ResourceType: "payment", ResourceID: "p-1",
	})
	svc.Log(context.Background(), &domain.AuditLog{
		ActorType: domain.PrincipalBank, Actor: "beta",
		Action: domain.AuditActionInboundTransfer, ResourceType: "inbound_transfer", ResourceID: "p-2",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Close(ctx))

	entries := repo.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionPayment, entries[0].Action)
	assert.Equal(t, "beta", entries[1].Actor)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestAuditService_RepoFailureDoesNotStopWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down")),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)
	svc := NewAuditService(repo, 4, zerolog.Nop())

	svc.Log(context.Background(), &domain.AuditLog{Action: domain.AuditActionLogin})
	svc.Log(context.Background(), &domain.AuditLog{Action: domain.AuditActionLogin})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Close(ctx))
}

func TestAuditService_LogAfterCloseIsDropped(t *testing.T) {
	svc := NewAuditService(nil, 1, zerolog.Nop())
	require.NoError(t, svc.Close(context.Background()))
	require.NoError(t, svc.Close(context.Background()))

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), &domain.AuditLog{Action: domain.AuditActionLogin})
	})
}
