package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalAccount is this bank's settlement position against one peer.
// Its balance never goes negative.
type CapitalAccount struct {
	BankCode  string          `json:"bank_code"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether amount can be taken from the position.
func (c *CapitalAccount) CanDebit(amount decimal.Decimal) bool {
	return c.Balance.GreaterThanOrEqual(amount)
}
