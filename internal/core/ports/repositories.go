package ports

import (
	"context"
	"errors"
	"time"

	"federated-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrAlreadyExists is returned by Create methods when the primary key is
// taken. Services use it to resolve idempotent retries.
var ErrAlreadyExists = errors.New("record already exists")

// ClientRepository defines persistence operations for retail clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// AccountRepository defines persistence operations for customer accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, number string, balance decimal.Decimal) error
}

// LedgerRepository stores the per-account entries behind every balance change.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, number string, limit int) ([]domain.LedgerEntry, error)
}

// CapitalRepository stores settlement positions against peer banks.
type CapitalRepository interface {
	// Seed creates the position if it does not exist yet.
	Seed(ctx context.Context, bankCode string, balance decimal.Decimal) error
	Get(ctx context.Context, bankCode string) (*domain.CapitalAccount, error)
	List(ctx context.Context) ([]domain.CapitalAccount, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, bankCode string) (*domain.CapitalAccount, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, bankCode string, balance decimal.Decimal) error
}

// ConsentRepository stores consent requests and the consents they produce.
type ConsentRepository interface {
	CreateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.ConsentRequest, error)
	GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConsentRequest, error)
	UpdateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error
	ListRequestsByClient(ctx context.Context, clientID string, status domain.ConsentRequestStatus) ([]domain.ConsentRequest, error)

	CreateConsent(ctx context.Context, tx pgx.Tx, consent *domain.Consent) error
	GetConsent(ctx context.Context, id uuid.UUID) (*domain.Consent, error)
	GetConsentForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Consent, error)
	UpdateConsentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ConsentStatus, at time.Time) error
	ListConsentsByClient(ctx context.Context, clientID string) ([]domain.Consent, error)
}

// PeerConsentRepository stores consents this bank holds at peer banks.
type PeerConsentRepository interface {
	Create(ctx context.Context, pc *domain.PeerConsent) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PeerConsent, error)
	Update(ctx context.Context, pc *domain.PeerConsent) error
	ListByClient(ctx context.Context, clientID string) ([]domain.PeerConsent, error)
}

// PaymentRepository stores outgoing payments and their interbank legs.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason string) error
	// ConsentUsage counts non-rejected payments made under consentID, and
	// those created at or after since.
	ConsentUsage(ctx context.Context, tx pgx.Tx, consentID uuid.UUID, since time.Time) (domain.ConsentUsage, error)

	CreateTransfer(ctx context.Context, tx pgx.Tx, transfer *domain.InterbankTransfer) error
	GetTransfer(ctx context.Context, paymentID uuid.UUID) (*domain.InterbankTransfer, error)
	UpdateTransfer(ctx context.Context, tx pgx.Tx, transfer *domain.InterbankTransfer) error
	// ListStaleTransfers returns transfers in status last touched before cutoff.
	ListStaleTransfers(ctx context.Context, status domain.PaymentStatus, cutoff time.Time, limit int) ([]domain.InterbankTransfer, error)
}

// InboundTransferRepository stores transfers settled into this bank.
type InboundTransferRepository interface {
	// Create returns ErrAlreadyExists when the payment id was already delivered.
	Create(ctx context.Context, tx pgx.Tx, transfer *domain.InboundTransfer) error
	Get(ctx context.Context, paymentID uuid.UUID) (*domain.InboundTransfer, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
