package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionLogin            AuditAction = "LOGIN"
	AuditActionPayment          AuditAction = "PAYMENT"
	AuditActionInboundTransfer  AuditAction = "INBOUND_TRANSFER"
	AuditActionConsentRequested AuditAction = "CONSENT_REQUESTED"
	AuditActionConsentApproved  AuditAction = "CONSENT_APPROVED"
	AuditActionConsentRejected  AuditAction = "CONSENT_REJECTED"
	AuditActionConsentRevoked   AuditAction = "CONSENT_REVOKED"
	AuditActionPeerConsent      AuditAction = "PEER_CONSENT"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID     `json:"id"`
	ActorType    PrincipalType `json:"actor_type"`
	Actor        string        `json:"actor"`
	Action       AuditAction   `json:"action"`
	ResourceType string        `json:"resource_type"`
	ResourceID   string        `json:"resource_id,omitempty"`
	Details      string        `json:"details,omitempty"` // JSON string
	IPAddress    string        `json:"ip_address"`
	CreatedAt    time.Time     `json:"created_at"`
}
