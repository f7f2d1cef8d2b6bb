package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/jwk"

	"github.com/golang-jwt/jwt/v5"
)

// BankAudience is the aud claim of every bank token.
const BankAudience = "interbank"

// TokenConfig holds the signing material of this bank.
type TokenConfig struct {
	BankCode     string
	ClientSecret string
	ClientExpiry time.Duration
	BankExpiry   time.Duration
	SigningKey   *rsa.PrivateKey
	KeyID        string
}

// JWTTokenService implements ports.TokenService. Client tokens are HS256
// with a shared secret; bank tokens are RS256 and verified against the
// issuer's published key set.
type JWTTokenService struct {
	cfg   TokenConfig
	trust ports.TrustRegistry
	now   func() time.Time
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(cfg TokenConfig, trust ports.TrustRegistry) *JWTTokenService {
	return &JWTTokenService{cfg: cfg, trust: trust, now: time.Now}
}

type tokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// IssueClientToken creates a signed HS256 token for a retail client.
func (s *JWTTokenService) IssueClientToken(clientID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.ClientExpiry)

	claims := tokenClaims{
		Type: string(domain.PrincipalClient),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Issuer:    s.cfg.BankCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.ClientSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing client token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueBankToken creates an RS256 token asserting this bank's identity.
func (s *JWTTokenService) IssueBankToken() (string, time.Time, error) {
	if s.cfg.SigningKey == nil {
		return "", time.Time{}, errors.New("no bank signing key configured")
	}
	now := s.now()
	expiresAt := now.Add(s.cfg.BankExpiry)

	claims := tokenClaims{
		Type: string(domain.PrincipalBank),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.cfg.BankCode,
			Issuer:    s.cfg.BankCode,
			Audience:  jwt.ClaimStrings{BankAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.cfg.KeyID
	signed, err := token.SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing bank token: %w", err)
	}
	return signed, expiresAt, nil
}

// PublishedKeySet returns the JWKS served at /.well-known/jwks.json.
func (s *JWTTokenService) PublishedKeySet() jwk.Set {
	if s.cfg.SigningKey == nil {
		return jwk.Set{Keys: []jwk.Key{}}
	}
	return jwk.Set{Keys: []jwk.Key{jwk.FromRSA(s.cfg.KeyID, &s.cfg.SigningKey.PublicKey)}}
}

// VerifyToken picks the verification path from the header alg. There is
// no fallback between the two paths.
func (s *JWTTokenService) VerifyToken(ctx context.Context, raw string) (*domain.Principal, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, &tokenClaims{})
	if err != nil {
		return nil, apperror.ErrMalformedToken()
	}

	alg, _ := unverified.Header["alg"].(string)
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		return s.verifyClient(raw)
	case jwt.SigningMethodRS256.Alg():
		claims, _ := unverified.Claims.(*tokenClaims)
		kid, _ := unverified.Header["kid"].(string)
		return s.verifyBank(ctx, raw, claims, kid)
	default:
		return nil, apperror.ErrMalformedToken()
	}
}

func (s *JWTTokenService) verifyClient(raw string) (*domain.Principal, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.ClientSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperror.ErrTokenExpired()
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperror.ErrInvalidSignature()
		default:
			return nil, apperror.ErrMalformedToken()
		}
	}
	if claims.Type != string(domain.PrincipalClient) || claims.Subject == "" {
		return nil, apperror.ErrMalformedToken()
	}
	return &domain.Principal{Type: domain.PrincipalClient, Subject: claims.Subject, Issuer: claims.Issuer}, nil
}

func (s *JWTTokenService) verifyBank(ctx context.Context, raw string, unverified *tokenClaims, kid string) (*domain.Principal, error) {
	if unverified == nil || unverified.Issuer == "" || kid == "" {
		return nil, apperror.ErrMalformedToken()
	}
	issuer := unverified.Issuer

	key, err := s.issuerKey(ctx, issuer, kid)
	if err != nil {
		return nil, err
	}

	claims := &tokenClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(BankAudience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired()
		}
		return nil, apperror.ErrSignatureMismatch()
	}
	if claims.Type != string(domain.PrincipalBank) || claims.Subject != issuer {
		return nil, apperror.ErrSignatureMismatch()
	}
	return &domain.Principal{Type: domain.PrincipalBank, Subject: issuer, Issuer: issuer}, nil
}

// issuerKey resolves the verification key. Tokens this bank issued itself
// are checked against its own key without going through the registry.
func (s *JWTTokenService) issuerKey(ctx context.Context, issuer, kid string) (*rsa.PublicKey, error) {
	if issuer == s.cfg.BankCode {
		if s.cfg.SigningKey == nil || kid != s.cfg.KeyID {
			return nil, apperror.ErrUntrustedIssuer(issuer)
		}
		return &s.cfg.SigningKey.PublicKey, nil
	}
	if s.trust == nil {
		return nil, apperror.ErrUntrustedIssuer(issuer)
	}
	return s.trust.PublicKey(ctx, issuer, kid)
}
