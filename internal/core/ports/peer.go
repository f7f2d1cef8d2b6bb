package ports

import (
	"context"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/pkg/jwk"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferDelivery is the settlement leg this bank delivers to a peer.
// PaymentID is the idempotency key on the receiving side.
type TransferDelivery struct {
	PaymentID   uuid.UUID
	FromBank    string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// TransferAck is a peer's confirmation that it credited a delivery.
type TransferAck struct {
	PaymentID uuid.UUID
	Status    domain.PaymentStatus
}

// PeerConsentCall asks a peer to open a consent request for one of its clients.
type PeerConsentCall struct {
	PeerClientID   string
	RequestingBank string
	Permissions    []domain.Permission
	Reason         string
}

// PeerConsentReply is the peer's view of a consent request. Status carries
// whatever spelling the peer used; callers normalize it.
type PeerConsentReply struct {
	RequestID string
	ConsentID string
	Status    string
	ExpiresAt *time.Time
}

// PeerError is a non-2xx answer from a peer bank.
type PeerError struct {
	Bank       string
	HTTPStatus int
	Code       string
	Message    string
}

func (e *PeerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("peer %s answered %d [%s] %s", e.Bank, e.HTTPStatus, e.Code, e.Message)
	}
	return fmt.Sprintf("peer %s answered %d", e.Bank, e.HTTPStatus)
}

// PeerClient makes bank-to-bank calls. Timeouts and retries are the
// caller's policy; the client performs exactly one request per call.
type PeerClient interface {
	DeliverTransfer(ctx context.Context, peer domain.Peer, token string, d TransferDelivery) (*TransferAck, error)
	ListAccounts(ctx context.Context, peer domain.Peer, token, consentID string) ([]domain.AccountView, error)
	RequestConsent(ctx context.Context, peer domain.Peer, token string, call PeerConsentCall) (*PeerConsentReply, error)
	GetConsentRequest(ctx context.Context, peer domain.Peer, token, requestID string) (*PeerConsentReply, error)
}

// KeySetFetcher loads a peer's published key set from its configured source.
type KeySetFetcher interface {
	FetchKeySet(ctx context.Context, peer domain.Peer) (jwk.Set, error)
}

// PeerDirectory lists the federation members this bank knows.
type PeerDirectory interface {
	Lookup(code string) (domain.Peer, bool)
	All() []domain.Peer
}
