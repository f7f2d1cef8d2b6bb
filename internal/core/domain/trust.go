package domain

import (
	"crypto/rsa"
	"time"
)

// PrincipalType distinguishes the two token classes.
type PrincipalType string

const (
	PrincipalClient PrincipalType = "client"
	PrincipalBank   PrincipalType = "bank"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Type    PrincipalType `json:"type"`
	Subject string        `json:"sub"`
	Issuer  string        `json:"iss"`
}

// IsBank returns true for callers holding a bank token.
func (p Principal) IsBank() bool { return p.Type == PrincipalBank }

// IsClient returns true for callers holding a client token.
func (p Principal) IsClient() bool { return p.Type == PrincipalClient }

// Peer is a federated bank this bank trusts and calls.
type Peer struct {
	Code     string
	Name     string
	APIURL   string
	JWKSURL  string
	JWKSFile string
}

// KeySource returns the location keys are loaded from.
func (p Peer) KeySource() string {
	if p.JWKSFile != "" {
		return "file:" + p.JWKSFile
	}
	return p.JWKSURL
}

// BankTrustRecord is the cached key set of one peer. It is derived from the
// peer's published keys and never authoritative.
type BankTrustRecord struct {
	BankCode  string
	Source    string
	Keys      map[string]*rsa.PublicKey
	FetchedAt time.Time
	TTL       time.Duration
}

// Fresh reports whether the record may still be served at now.
func (r *BankTrustRecord) Fresh(now time.Time) bool {
	return r != nil && now.Before(r.FetchedAt.Add(r.TTL))
}

// Key looks up kid in the cached set.
func (r *BankTrustRecord) Key(kid string) (*rsa.PublicKey, bool) {
	if r == nil {
		return nil, false
	}
	k, ok := r.Keys[kid]
	return k, ok
}
