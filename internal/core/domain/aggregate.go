package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is an account as reported by a peer bank.
type AccountView struct {
	AccountNumber string           `json:"account_number"`
	Name          string           `json:"name,omitempty"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

// BankAccounts is one peer's slice of an aggregated read. Error is set
// instead of Accounts when the peer could not be read.
type BankAccounts struct {
	BankCode  string        `json:"bank_code"`
	ConsentID string        `json:"consent_id"`
	Accounts  []AccountView `json:"accounts,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Failed reports whether this entry carries an error.
func (b BankAccounts) Failed() bool { return b.Error != "" }

// AggregatedAccounts is the response of a multibank read. FromCache is true
// only when every peer entry came from cache.
type AggregatedAccounts struct {
	ClientID  string         `json:"client_id"`
	Banks     []BankAccounts `json:"banks"`
	FromCache bool           `json:"from_cache"`
}
