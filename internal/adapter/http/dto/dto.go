package dto

import (
	"federated-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoginRequest is the request body for client login.
type LoginRequest struct {
	ClientID string `json:"client_id" binding:"required,safe_id,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"` // Unix timestamp
}

// ConsentRequestBody is sent by a peer bank asking for access to a client's data.
type ConsentRequestBody struct {
	ClientID       string   `json:"client_id" binding:"required,safe_id,max=64"`
	RequestingBank string   `json:"requesting_bank" binding:"omitempty,bank_code"`
	Permissions    []string `json:"permissions" binding:"required,min=1,dive,permission"`
	Reason         string   `json:"reason" binding:"max=255"`
	// Limits bound payments made under an InitiatePayment consent.
	Limits *domain.PaymentLimits `json:"payment_limits,omitempty"`
}

// ConsentRequestReply is what the requesting bank polls for.
type ConsentRequestReply struct {
	RequestID uuid.UUID  `json:"request_id"`
	Status    string     `json:"status"`
	ConsentID *uuid.UUID `json:"consent_id,omitempty"`
}

// PaymentRequest is the request body for payment initiation. ToBank empty
// or "self" keeps the payment inside this bank.
type PaymentRequest struct {
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
	ConsentID   *uuid.UUID      `json:"consent_id,omitempty"`
	FromAccount string          `json:"from_account" binding:"required,safe_id,max=34"`
	ToBank      string          `json:"to_bank" binding:"omitempty,bank_code"`
	ToAccount   string          `json:"to_account" binding:"required,safe_id,max=34"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	Description string          `json:"description" binding:"max=255"`
}

// InboundTransferRequest is the settlement leg delivered by a peer bank.
type InboundTransferRequest struct {
	PaymentID   uuid.UUID       `json:"payment_id" binding:"required"`
	FromBank    string          `json:"from_bank" binding:"required,bank_code"`
	FromAccount string          `json:"from_account" binding:"required,max=34"`
	ToAccount   string          `json:"to_account" binding:"required,safe_id,max=34"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	Description string          `json:"description" binding:"max=255"`
}

// InboundTransferReply acknowledges a credited delivery.
type InboundTransferReply struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
}

// PeerConsentRequest asks a peer bank for access on behalf of the caller.
type PeerConsentRequest struct {
	BankCode     string   `json:"bank_code" binding:"required,bank_code"`
	PeerClientID string   `json:"peer_client_id" binding:"required,safe_id,max=64"`
	Permissions  []string `json:"permissions" binding:"required,min=1,dive,permission"`
	Reason       string   `json:"reason" binding:"max=255"`
}

// TransactionsQuery pages the ledger of one account.
type TransactionsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
