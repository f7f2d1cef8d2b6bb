package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/internal/core/ports/mocks"
	"federated-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestPeerConsentService(t *testing.T) (*PeerConsentServiceImpl, *mocks.MockPeerClient, *bankFixture) {
	t.Helper()
	ctrl := gomock.NewController(t)
	peers := mocks.NewMockPeerClient(ctrl)
	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().IssueBankToken().Return("bank-token", time.Now().Add(time.Hour), nil).AnyTimes()

	f := newBankFixture()
	f.addClient(t, "cli-1")
	dir := staticDirectory{
		"alpha": domain.Peer{Code: "alpha", APIURL: "http://alpha"},
		"beta":  domain.Peer{Code: "beta", APIURL: "http://beta"},
	}
	svc := NewPeerConsentService(f.peerConsents, f.clients, dir, peers, tokens, "alpha", zerolog.Nop())
	return svc, peers, f
}

func peerConsentInput() ports.PeerConsentInput {
	return ports.PeerConsentInput{
		ClientID:     "cli-1",
		BankCode:     "BETA",
		PeerClientID: "beta-cli-9",
		Permissions:  []string{"ReadAccountsBasic", "ReadBalances"},
	}
}

func TestPeerConsentService_RequestAndSync(t *testing.T) {
	svc, peers, _ := newTestPeerConsentService(t)
	ctx := context.Background()

	peers.EXPECT().
		RequestConsent(gomock.Any(), gomock.Any(), "bank-token", gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.Peer, _ string, call ports.PeerConsentCall) (*ports.PeerConsentReply, error) {
			assert.Equal(t, "beta", p.Code)
			assert.Equal(t, "alpha", call.RequestingBank)
			assert.Equal(t, "beta-cli-9", call.PeerClientID)
			return &ports.PeerConsentReply{RequestID: "req-1", Status: "AwaitingAuthorisation"}, nil
		})

	pc, err := svc.RequestPeerConsent(ctx, peerConsentInput())
	require.NoError(t, err)
	assert.Equal(t, domain.PeerConsentPending, pc.Status)
	assert.Equal(t, "beta", pc.BankCode)
	assert.False(t, pc.Readable(time.Now()))

	peers.EXPECT().
		GetConsentRequest(gomock.Any(), gomock.Any(), "bank-token", "req-1").
		Return(&ports.PeerConsentReply{RequestID: "req-1", ConsentID: "cons-7", Status: "APPROVED"}, nil)

	synced, err := svc.SyncPeerConsent(ctx, "cli-1", pc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PeerConsentAuthorised, synced.Status)
	assert.Equal(t, "cons-7", synced.PeerConsentID)
	assert.True(t, synced.Readable(time.Now()))

	// Authorised consents are not polled again.
	again, err := svc.SyncPeerConsent(ctx, "cli-1", pc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PeerConsentAuthorised, again.Status)

	held, err := svc.HeldConsents(ctx, "cli-1")
	require.NoError(t, err)
	require.Len(t, held, 1)

	require.NoError(t, svc.MarkPeerConsentRevoked(ctx, "cli-1", pc.ID))
	held, err = svc.HeldConsents(ctx, "cli-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PeerConsentRevoked, held[0].Status)
}

func TestPeerConsentService_RequestErrors(t *testing.T) {
	svc, peers, _ := newTestPeerConsentService(t)
	ctx := context.Background()

	in := peerConsentInput()
	in.BankCode = "gamma"
	_, err := svc.RequestPeerConsent(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrUnknownPeer(""))

	in = peerConsentInput()
	in.BankCode = "alpha"
	_, err = svc.RequestPeerConsent(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrUnknownPeer(""))

	in = peerConsentInput()
	in.Permissions = []string{"Everything"}
	_, err = svc.RequestPeerConsent(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrInvalidScope(""))

	in = peerConsentInput()
	in.ClientID = "ghost"
	_, err = svc.RequestPeerConsent(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound(""))

	peers.EXPECT().RequestConsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &ports.PeerError{Bank: "beta", HTTPStatus: 503})
	_, err = svc.RequestPeerConsent(ctx, peerConsentInput())
	assert.ErrorIs(t, err, apperror.ErrPeerUnavailable("", nil))

	peers.EXPECT().RequestConsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.PeerConsentReply{RequestID: "r", Status: "Maybe"}, nil)
	_, err = svc.RequestPeerConsent(ctx, peerConsentInput())
	assert.ErrorIs(t, err, apperror.ErrPeerUnavailable("", nil))
}

func TestPeerConsentService_SyncFailureKeepsPending(t *testing.T) {
	svc, peers, f := newTestPeerConsentService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	pc := &domain.PeerConsent{
		ID: uuid.New(), ClientID: "cli-1", BankCode: "beta", PeerRequestID: "req-2",
		Permissions: []domain.Permission{domain.PermReadAccountsBasic},
		Status:      domain.PeerConsentPending, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.peerConsents.Create(ctx, pc))

	_, err := svc.SyncPeerConsent(ctx, "other", pc.ID)
	assert.ErrorIs(t, err, apperror.ErrConsentNotFound())

	peers.EXPECT().GetConsentRequest(gomock.Any(), gomock.Any(), gomock.Any(), "req-2").
		Return(nil, errors.New("connection refused"))
	_, err = svc.SyncPeerConsent(ctx, "cli-1", pc.ID)
	assert.ErrorIs(t, err, apperror.ErrPeerUnavailable("", nil))

	stored, err := f.peerConsents.Get(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PeerConsentPending, stored.Status)
}
