package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Permission is one entry of the fixed consent scope taxonomy.
type Permission string

const (
	PermReadAccountsBasic      Permission = "ReadAccountsBasic"
	PermReadAccountsDetail     Permission = "ReadAccountsDetail"
	PermReadBalances           Permission = "ReadBalances"
	PermReadTransactionsBasic  Permission = "ReadTransactionsBasic"
	PermReadTransactionsDetail Permission = "ReadTransactionsDetail"
	PermInitiatePayment        Permission = "InitiatePayment"
)

var knownPermissions = map[Permission]struct{}{
	PermReadAccountsBasic:      {},
	PermReadAccountsDetail:     {},
	PermReadBalances:           {},
	PermReadTransactionsBasic:  {},
	PermReadTransactionsDetail: {},
	PermInitiatePayment:        {},
}

// ErrEmptyScope and ErrUnknownPermission are returned by ParsePermissions.
var (
	ErrEmptyScope        = errors.New("permission set must not be empty")
	ErrUnknownPermission = errors.New("unknown permission")
)

// IsKnown reports whether p belongs to the taxonomy.
func (p Permission) IsKnown() bool {
	_, ok := knownPermissions[p]
	return ok
}

// ParsePermissions validates raw against the taxonomy and removes duplicates,
// keeping first-seen order.
func ParsePermissions(raw []string) ([]Permission, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyScope
	}
	seen := make(map[Permission]bool, len(raw))
	out := make([]Permission, 0, len(raw))
	for _, s := range raw {
		p := Permission(strings.TrimSpace(s))
		if !p.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, s)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// PermissionStrings converts perms for storage and transport.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func hasPermission(perms []Permission, p Permission) bool {
	for _, have := range perms {
		if have == p {
			return true
		}
	}
	return false
}

// ConsentRequestStatus is the lifecycle state of a consent request.
type ConsentRequestStatus string

const (
	ConsentRequestPending  ConsentRequestStatus = "Pending"
	ConsentRequestApproved ConsentRequestStatus = "Approved"
	ConsentRequestRejected ConsentRequestStatus = "Rejected"
)

// ConsentRequest is a peer bank's request for access to a client's data.
// Approved and Rejected are terminal.
type ConsentRequest struct {
	ID             uuid.UUID            `json:"request_id"`
	ClientID       string               `json:"client_id"`
	RequestingBank string               `json:"requesting_bank"`
	Permissions    []Permission         `json:"permissions"`
	Reason         string               `json:"reason,omitempty"`
	Limits         *PaymentLimits       `json:"payment_limits,omitempty"`
	Status         ConsentRequestStatus `json:"status"`
	ConsentID      *uuid.UUID           `json:"consent_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	DecidedAt      *time.Time           `json:"decided_at,omitempty"`
}

// IsPending returns true while the client has not decided.
func (r *ConsentRequest) IsPending() bool {
	return r.Status == ConsentRequestPending
}

// ConsentStatus is the stored state of a granted consent.
type ConsentStatus string

const (
	ConsentAuthorised ConsentStatus = "Authorised"
	ConsentRevoked    ConsentStatus = "Revoked"
	ConsentExpired    ConsentStatus = "Expired"
)

// Consent grants a peer bank scoped, time-limited access to a client's data.
type Consent struct {
	ID          uuid.UUID      `json:"consent_id"`
	RequestID   uuid.UUID      `json:"request_id"`
	ClientID    string         `json:"client_id"`
	GrantedTo   string         `json:"granted_to"`
	Permissions []Permission   `json:"permissions"`
	Limits      *PaymentLimits `json:"payment_limits,omitempty"`
	Status      ConsentStatus  `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	RevokedAt   *time.Time     `json:"revoked_at,omitempty"`
}

// NewConsent creates the Authorised consent for an approved request.
func NewConsent(req *ConsentRequest, now time.Time, horizon time.Duration) *Consent {
	perms := make([]Permission, len(req.Permissions))
	copy(perms, req.Permissions)
	return &Consent{
		ID:          uuid.New(),
		RequestID:   req.ID,
		ClientID:    req.ClientID,
		GrantedTo:   req.RequestingBank,
		Permissions: perms,
		Limits:      req.Limits,
		Status:      ConsentAuthorised,
		CreatedAt:   now,
		ExpiresAt:   now.Add(horizon),
	}
}

// EffectiveStatus applies expiry at read time. An Authorised consent is
// Expired once now >= ExpiresAt, whatever is stored.
func (c *Consent) EffectiveStatus(now time.Time) ConsentStatus {
	if c.Status == ConsentAuthorised && !now.Before(c.ExpiresAt) {
		return ConsentExpired
	}
	return c.Status
}

// Grants reports whether p is in the granted set.
func (c *Consent) Grants(p Permission) bool {
	return hasPermission(c.Permissions, p)
}

// DenyReason explains why a consent check failed.
type DenyReason string

const (
	DenyNone              DenyReason = ""
	DenyNotFound          DenyReason = "not_found"
	DenyWrongBank         DenyReason = "wrong_bank"
	DenyRevoked           DenyReason = "revoked"
	DenyExpired           DenyReason = "expired"
	DenyInsufficientScope DenyReason = "insufficient_scope"
)

// Check evaluates the consent for bank asking for perm at now.
// It returns DenyNone only when every condition holds.
func (c *Consent) Check(bank string, perm Permission, now time.Time) DenyReason {
	if c == nil {
		return DenyNotFound
	}
	if c.GrantedTo != bank {
		return DenyWrongBank
	}
	switch c.EffectiveStatus(now) {
	case ConsentRevoked:
		return DenyRevoked
	case ConsentExpired:
		return DenyExpired
	case ConsentAuthorised:
	default:
		return DenyRevoked
	}
	if !c.Grants(perm) {
		return DenyInsufficientScope
	}
	return DenyNone
}

// PeerConsentStatus tracks a consent this bank holds at a peer bank.
type PeerConsentStatus string

const (
	PeerConsentPending    PeerConsentStatus = "Pending"
	PeerConsentAuthorised PeerConsentStatus = "Authorised"
	PeerConsentRejected   PeerConsentStatus = "Rejected"
	PeerConsentRevoked    PeerConsentStatus = "Revoked"
)

// PeerConsent is a consent issued by a peer bank to this bank on behalf of
// one of our clients. The aggregator reads peer data with it.
type PeerConsent struct {
	ID            uuid.UUID         `json:"id"`
	ClientID      string            `json:"client_id"`
	BankCode      string            `json:"bank_code"`
	PeerClientID  string            `json:"peer_client_id"`
	PeerRequestID string            `json:"peer_request_id"`
	PeerConsentID string            `json:"peer_consent_id,omitempty"`
	Permissions   []Permission      `json:"permissions"`
	Status        PeerConsentStatus `json:"status"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Grants reports whether the peer granted p.
func (p *PeerConsent) Grants(perm Permission) bool {
	return hasPermission(p.Permissions, perm)
}

// Readable reports whether the consent can be used for account reads at now.
func (p *PeerConsent) Readable(now time.Time) bool {
	if p.Status != PeerConsentAuthorised || p.PeerConsentID == "" {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return p.Grants(PermReadAccountsBasic) || p.Grants(PermReadBalances)
}

// ErrUnknownStatus is returned when a status string has no canonical mapping.
var ErrUnknownStatus = errors.New("unknown status")

// NormalizePeerStatus maps the status spellings peers use on the wire onto
// one canonical value. Request and consent vocabularies both appear here
// because peers report either depending on the endpoint.
func NormalizePeerStatus(raw string) (PeerConsentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "awaitingauthorisation", "awaitingauthorization", "awaiting_authorisation":
		return PeerConsentPending, nil
	case "approved", "authorised", "authorized", "active":
		return PeerConsentAuthorised, nil
	case "rejected", "declined":
		return PeerConsentRejected, nil
	case "revoked", "expired":
		return PeerConsentRevoked, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}
