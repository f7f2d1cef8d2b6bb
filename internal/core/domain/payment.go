package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelfBankCode is the reserved destination bank code for this bank.
const SelfBankCode = "self"

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "Pending"
	PaymentSettlementInProcess PaymentStatus = "AcceptedSettlementInProcess"
	PaymentSettlementCompleted PaymentStatus = "AcceptedSettlementCompleted"
	PaymentRejected            PaymentStatus = "Rejected"
)

// PaymentRoute tells how a payment settles.
type PaymentRoute string

const (
	RouteDomestic  PaymentRoute = "domestic"
	RouteInterbank PaymentRoute = "interbank"
)

// Payment is an outgoing money movement from a local account. It is
// immutable once terminal.
type Payment struct {
	ID            uuid.UUID       `json:"payment_id"`
	ClientID      string          `json:"client_id"`
	FromAccount   string          `json:"from_account"`
	ToBank        string          `json:"to_bank"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	Route         PaymentRoute    `json:"route"`
	Status        PaymentStatus   `json:"status"`
	InitiatedBy   string          `json:"initiated_by"`
	ConsentID     *uuid.UUID      `json:"consent_id,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentSettlementCompleted || p.Status == PaymentRejected
}

// SameParameters reports whether other describes the same money movement.
// A payment id reused with different parameters is a conflict.
func (p *Payment) SameParameters(fromAccount string, dest DestinationRef, amount decimal.Decimal, currency string) bool {
	return p.FromAccount == fromAccount &&
		p.ToBank == dest.BankCode &&
		p.ToAccount == dest.Account &&
		p.Amount.Equal(amount) &&
		strings.EqualFold(p.Currency, currency)
}

// InterbankTransfer is the cross-bank leg of a payment. Its status mirrors
// the payment's.
type InterbankTransfer struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	FromBank  string          `json:"from_bank"`
	ToBank    string          `json:"to_bank"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    PaymentStatus   `json:"status"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// InboundTransfer records a transfer another bank settled into one of our
// accounts. PaymentID is the sender's id and makes delivery idempotent.
type InboundTransfer struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	FromBank    string          `json:"from_bank"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DestinationRef identifies the receiving account of a payment.
type DestinationRef struct {
	BankCode string
	Account  string
}

// IsDomestic is true when the destination is held at this bank.
func (d DestinationRef) IsDomestic() bool {
	return d.BankCode == SelfBankCode
}

var (
	ErrMissingAccount  = errors.New("destination account is required")
	ErrInvalidBankCode = errors.New("destination bank code is malformed")

	bankCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)
)

// ValidBankCode reports whether code is a well-formed federation bank code.
func ValidBankCode(code string) bool {
	return bankCodePattern.MatchString(code)
}

// ParseDestination normalizes a (bank, account) pair. An empty bank code,
// "self", or this bank's own code all resolve to the domestic path.
func ParseDestination(bankCode, account, ownCode string) (DestinationRef, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return DestinationRef{}, ErrMissingAccount
	}
	code := strings.ToLower(strings.TrimSpace(bankCode))
	if code == "" || code == SelfBankCode || code == strings.ToLower(ownCode) {
		return DestinationRef{BankCode: SelfBankCode, Account: account}, nil
	}
	if !ValidBankCode(code) {
		return DestinationRef{}, ErrInvalidBankCode
	}
	return DestinationRef{BankCode: code, Account: account}, nil
}

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// ValidAmount reports whether amount is positive and representable in
// minor units without rounding.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(MoneyScale))
}
