package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(KindPayment, "PAY_001", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[PAY_001] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(KindSystem, "SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(KindSystem, "SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("debit: %w", ErrInsufficientCapital("abank"))

	assert.True(t, errors.Is(err, ErrInsufficientCapital("sbank")))
	assert.False(t, errors.Is(err, ErrInsufficientFunds()))
}

func TestCodeAndKindOf(t *testing.T) {
	err := fmt.Errorf("verify: %w", ErrUntrustedIssuer("abank"))

	assert.Equal(t, "FED_001", CodeOf(err))
	assert.Equal(t, KindFederation, KindOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		kind       Kind
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), KindAuth, "AUTH_001", 401},
		{"InvalidSignature", ErrInvalidSignature(), KindAuth, "AUTH_002", 401},
		{"TokenExpired", ErrTokenExpired(), KindAuth, "AUTH_003", 401},
		{"MalformedToken", ErrMalformedToken(), KindAuth, "AUTH_004", 401},
		{"WrongPrincipal", ErrWrongPrincipal("bank"), KindAuth, "AUTH_005", 403},
		{"UntrustedIssuer", ErrUntrustedIssuer("x"), KindFederation, "FED_001", 401},
		{"KeyFetchFailed", ErrKeyFetchFailed("x", errors.New("dial")), KindFederation, "FED_002", 401},
		{"SignatureMismatch", ErrSignatureMismatch(), KindFederation, "FED_003", 401},
		{"MissingCorrelation", ErrMissingCorrelation("x-consent-id"), KindFederation, "FED_004", 400},
		{"UnknownPeer", ErrUnknownPeer("x"), KindFederation, "FED_005", 400},
		{"PeerUnavailable", ErrPeerUnavailable("x", errors.New("timeout")), KindFederation, "FED_006", 502},
		{"ConsentNotFound", ErrConsentNotFound(), KindConsent, "CNS_001", 403},
		{"ConsentWrongBank", ErrConsentWrongBank(), KindConsent, "CNS_002", 403},
		{"ConsentExpired", ErrConsentExpired(), KindConsent, "CNS_003", 403},
		{"InsufficientScope", ErrInsufficientScope("ReadBalances"), KindConsent, "CNS_004", 403},
		{"InvalidScope", ErrInvalidScope("bad"), KindConsent, "CNS_005", 400},
		{"InvalidTransition", ErrInvalidTransition("bad"), KindConsent, "CNS_006", 409},
		{"ConsentRevoked", ErrConsentRevoked(), KindConsent, "CNS_007", 403},
		{"ConsentLimitExceeded", ErrConsentLimitExceeded("over"), KindConsent, "CNS_008", 422},
		{"InsufficientFunds", ErrInsufficientFunds(), KindPayment, "PAY_001", 402},
		{"InvalidAmount", ErrInvalidAmount(), KindPayment, "PAY_002", 400},
		{"InsufficientCapital", ErrInsufficientCapital("abank"), KindPayment, "PAY_003", 422},
		{"InvalidDestination", ErrInvalidDestination("bad"), KindPayment, "PAY_004", 400},
		{"DuplicatePayment", ErrDuplicatePayment(), KindPayment, "PAY_005", 409},
		{"AccountInactive", ErrAccountInactive(), KindPayment, "PAY_006", 422},
		{"CurrencyMismatch", ErrCurrencyMismatch(), KindPayment, "PAY_007", 400},
		{"NotFound", ErrNotFound("payment"), KindPayment, "PAY_008", 404},
		{"SettlementRejected", ErrSettlementRejected(nil), KindPayment, "PAY_009", 502},
		{"Internal", InternalError(nil), KindSystem, "SYS_001", 500},
		{"RateLimit", ErrRateLimitExceeded(), KindSystem, "SYS_002", 429},
		{"Validation", Validation("bad"), KindSystem, "SYS_003", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "payment not found", ErrNotFound("payment").Message)
}
