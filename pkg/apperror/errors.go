package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups error codes into the federation error taxonomy.
type Kind string

const (
	KindAuth       Kind = "AuthError"
	KindFederation Kind = "FederationError"
	KindConsent    Kind = "ConsentError"
	KindPayment    Kind = "PaymentError"
	KindSystem     Kind = "SystemError"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Kind       Kind   `json:"error_kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the constructors below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// ---- AuthError (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(KindAuth, "AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New(KindAuth, "AUTH_002", "Invalid token signature", http.StatusUnauthorized)
}

func ErrTokenExpired() *AppError {
	return New(KindAuth, "AUTH_003", "Token expired", http.StatusUnauthorized)
}

func ErrMalformedToken() *AppError {
	return New(KindAuth, "AUTH_004", "Malformed token", http.StatusUnauthorized)
}

func ErrWrongPrincipal(expected string) *AppError {
	return New(KindAuth, "AUTH_005", fmt.Sprintf("Endpoint requires a %s token", expected), http.StatusForbidden)
}

// ---- FederationError (FED) ----

func ErrUntrustedIssuer(bankCode string) *AppError {
	return New(KindFederation, "FED_001", fmt.Sprintf("Untrusted issuer %q", bankCode), http.StatusUnauthorized)
}

func ErrKeyFetchFailed(bankCode string, err error) *AppError {
	return Wrap(KindFederation, "FED_002", fmt.Sprintf("Key set for %q unavailable", bankCode), http.StatusUnauthorized, err)
}

func ErrSignatureMismatch() *AppError {
	return New(KindFederation, "FED_003", "Bank token signature or claims mismatch", http.StatusUnauthorized)
}

func ErrMissingCorrelation(header string) *AppError {
	return New(KindFederation, "FED_004", fmt.Sprintf("Missing required header %s", header), http.StatusBadRequest)
}

func ErrUnknownPeer(bankCode string) *AppError {
	return New(KindFederation, "FED_005", fmt.Sprintf("Bank %q is not part of the federation", bankCode), http.StatusBadRequest)
}

func ErrPeerUnavailable(bankCode string, err error) *AppError {
	return Wrap(KindFederation, "FED_006", fmt.Sprintf("Peer bank %q did not answer", bankCode), http.StatusBadGateway, err)
}

// ---- ConsentError (CNS) ----

func ErrConsentNotFound() *AppError {
	return New(KindConsent, "CNS_001", "Consent not found", http.StatusForbidden)
}

func ErrConsentWrongBank() *AppError {
	return New(KindConsent, "CNS_002", "Consent was granted to a different bank", http.StatusForbidden)
}

func ErrConsentExpired() *AppError {
	return New(KindConsent, "CNS_003", "Consent expired", http.StatusForbidden)
}

func ErrInsufficientScope(permission string) *AppError {
	return New(KindConsent, "CNS_004", fmt.Sprintf("Consent does not grant %s", permission), http.StatusForbidden)
}

func ErrInvalidScope(message string) *AppError {
	return New(KindConsent, "CNS_005", message, http.StatusBadRequest)
}

func ErrInvalidTransition(message string) *AppError {
	return New(KindConsent, "CNS_006", message, http.StatusConflict)
}

func ErrConsentRevoked() *AppError {
	return New(KindConsent, "CNS_007", "Consent revoked", http.StatusForbidden)
}

func ErrConsentLimitExceeded(message string) *AppError {
	return New(KindConsent, "CNS_008", message, http.StatusUnprocessableEntity)
}

func ErrConsentRequestNotFound() *AppError {
	return New(KindConsent, "CNS_001", "Consent request not found", http.StatusNotFound)
}

// ---- PaymentError (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New(KindPayment, "PAY_001", "Insufficient balance in account", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(KindPayment, "PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrInsufficientCapital(bankCode string) *AppError {
	return New(KindPayment, "PAY_003", fmt.Sprintf("Insufficient settlement capital with %s", bankCode), http.StatusUnprocessableEntity)
}

func ErrInvalidDestination(message string) *AppError {
	return New(KindPayment, "PAY_004", message, http.StatusBadRequest)
}

func ErrDuplicatePayment() *AppError {
	return New(KindPayment, "PAY_005", "Payment id reused with different parameters", http.StatusConflict)
}

func ErrAccountInactive() *AppError {
	return New(KindPayment, "PAY_006", "Account is not active", http.StatusUnprocessableEntity)
}

func ErrCurrencyMismatch() *AppError {
	return New(KindPayment, "PAY_007", "Currency does not match account", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(KindPayment, "PAY_008", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrSettlementRejected(err error) *AppError {
	return Wrap(KindPayment, "PAY_009", "Remote settlement failed, payment rejected", http.StatusBadGateway, err)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(KindSystem, "SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrRateLimitExceeded() *AppError {
	return New(KindSystem, "SYS_002", "Rate limit exceeded", http.StatusTooManyRequests)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(KindSystem, "SYS_003", message, http.StatusBadRequest)
}
