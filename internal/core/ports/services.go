package ports

import (
	"context"
	"crypto/rsa"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/pkg/jwk"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService issues and verifies client and bank tokens.
type TokenService interface {
	IssueClientToken(clientID string) (string, time.Time, error)
	// IssueBankToken signs a token asserting this bank's identity for interbank calls.
	IssueBankToken() (string, time.Time, error)
	VerifyToken(ctx context.Context, token string) (*domain.Principal, error)
	PublishedKeySet() jwk.Set
}

// TrustRegistry resolves peer signing keys. It fails closed.
type TrustRegistry interface {
	PublicKey(ctx context.Context, bankCode, kid string) (*rsa.PublicKey, error)
	Invalidate(bankCode string)
}

// --- Service Ports (Business Logic) ---

// AuthService defines client authentication.
type AuthService interface {
	Login(ctx context.Context, clientID, password string) (string, time.Time, error) // token, expiry, error
}

// ConsentRequestInput is an inbound consent request from a peer bank.
type ConsentRequestInput struct {
	ClientID       string
	RequestingBank string
	Permissions    []string
	Reason         string
	Limits         *domain.PaymentLimits
}

// ConsentService owns the consent state machine at this bank.
type ConsentService interface {
	RequestConsent(ctx context.Context, in ConsentRequestInput) (*domain.ConsentRequest, error)
	Approve(ctx context.Context, clientID string, requestID uuid.UUID) (*domain.Consent, error)
	Reject(ctx context.Context, clientID string, requestID uuid.UUID) (*domain.ConsentRequest, error)
	Revoke(ctx context.Context, clientID string, consentID uuid.UUID) (*domain.Consent, error)
	// VerifyConsent returns nil when the consent allows bank to use perm.
	VerifyConsent(ctx context.Context, consentID uuid.UUID, bank string, perm domain.Permission) (*domain.Consent, error)
	GetRequest(ctx context.Context, bank string, requestID uuid.UUID) (*domain.ConsentRequest, error)
	ListPendingRequests(ctx context.Context, clientID string) ([]domain.ConsentRequest, error)
	ListConsents(ctx context.Context, clientID string) ([]domain.Consent, error)
}

// PeerConsentInput asks a peer bank for access on behalf of a local client.
type PeerConsentInput struct {
	ClientID     string
	BankCode     string
	PeerClientID string
	Permissions  []string
	Reason       string
}

// PeerConsentService manages consents this bank holds at peers.
type PeerConsentService interface {
	RequestPeerConsent(ctx context.Context, in PeerConsentInput) (*domain.PeerConsent, error)
	SyncPeerConsent(ctx context.Context, clientID string, id uuid.UUID) (*domain.PeerConsent, error)
	HeldConsents(ctx context.Context, clientID string) ([]domain.PeerConsent, error)
	MarkPeerConsentRevoked(ctx context.Context, clientID string, id uuid.UUID) error
}

// CapitalLedger books settlement positions inside the caller's transaction.
type CapitalLedger interface {
	Debit(ctx context.Context, tx pgx.Tx, bankCode string, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, tx pgx.Tx, bankCode string, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, bankCode string) (decimal.Decimal, error)
	Positions(ctx context.Context) ([]domain.CapitalAccount, error)
}

// PaymentRequest holds validated input for payment initiation.
type PaymentRequest struct {
	PaymentID   *uuid.UUID
	Principal   domain.Principal
	ConsentID   *uuid.UUID
	FromAccount string
	ToBank      string
	ToAccount   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// PaymentService routes payments to the domestic or interbank path.
type PaymentService interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error)
	GetPayment(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Payment, error)
	ReconcilePending(ctx context.Context, staleAfter time.Duration) (int, error)
}

// InboundTransferRequest is a peer's settlement delivery.
type InboundTransferRequest struct {
	PaymentID   uuid.UUID
	FromBank    string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// SettlementService accepts interbank transfers addressed to this bank.
type SettlementService interface {
	AcceptTransfer(ctx context.Context, principal domain.Principal, req InboundTransferRequest) (*domain.InboundTransfer, error)
}

// AccountAccess describes who reads account data and under which consent.
type AccountAccess struct {
	Principal      domain.Principal
	ConsentID      uuid.UUID
	RequestingBank string
}

// AccountService serves account data to owners and consented peers.
type AccountService interface {
	ListAccounts(ctx context.Context, access AccountAccess) ([]domain.AccountView, error)
	GetBalance(ctx context.Context, access AccountAccess, number string) (*domain.AccountView, error)
	ListTransactions(ctx context.Context, access AccountAccess, number string, limit int) ([]domain.LedgerEntry, error)
}

// AggregatorService reads a client's accounts across federated banks.
type AggregatorService interface {
	ListExternalAccounts(ctx context.Context, clientID string) (*domain.AggregatedAccounts, error)
	Refresh(ctx context.Context, clientID string) (*domain.AggregatedAccounts, error)
}

// AuditService records security-relevant actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
