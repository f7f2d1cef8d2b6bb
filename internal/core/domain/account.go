package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the state of a customer account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// Account is a customer account held at this bank. Balance is only mutated
// by the payment router inside a store transaction holding the row lock.
type Account struct {
	Number    string          `json:"account_number"`
	ClientID  string          `json:"client_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Status    AccountStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsActive returns true if the account can send and receive money.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// CanDebit reports whether amount can leave the account without overdrawing it.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Client is a retail customer of this bank.
type Client struct {
	ID           string    `json:"client_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// EntryDirection is the side of a double-entry ledger row.
type EntryDirection string

const (
	EntryDebit  EntryDirection = "debit"
	EntryCredit EntryDirection = "credit"
)

// LedgerEntry records one balance change on an account. Every payment
// produces entries whose debits and credits net to zero across the bank's
// accounts and capital positions.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber string          `json:"account_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Direction     EntryDirection  `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewLedgerEntry builds an entry stamped with a fresh id and the current time.
func NewLedgerEntry(account string, paymentID uuid.UUID, dir EntryDirection, amount, balanceAfter decimal.Decimal, desc string) *LedgerEntry {
	return &LedgerEntry{
		ID:            uuid.New(),
		AccountNumber: account,
		PaymentID:     paymentID,
		Direction:     dir,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Description:   desc,
		CreatedAt:     time.Now().UTC(),
	}
}
