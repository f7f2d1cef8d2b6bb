package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/internal/core/ports/mocks"
	"federated-bank/pkg/apperror"
	"federated-bank/pkg/jwk"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router     *gin.Engine
	auth       *mocks.MockAuthService
	tokens     *mocks.MockTokenService
	consents   *mocks.MockConsentService
	peers      *mocks.MockPeerConsentService
	accounts   *mocks.MockAccountService
	payments   *mocks.MockPaymentService
	settlement *mocks.MockSettlementService
	aggregator *mocks.MockAggregatorService
}

// newFixture wires the full router over mocks. The bearer tokens
// "client-<id>" and "bank-<code>" resolve to the matching principals.
func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		auth:       mocks.NewMockAuthService(ctrl),
		tokens:     mocks.NewMockTokenService(ctrl),
		consents:   mocks.NewMockConsentService(ctrl),
		peers:      mocks.NewMockPeerConsentService(ctrl),
		accounts:   mocks.NewMockAccountService(ctrl),
		payments:   mocks.NewMockPaymentService(ctrl),
		settlement: mocks.NewMockSettlementService(ctrl),
		aggregator: mocks.NewMockAggregatorService(ctrl),
	}
	f.tokens.EXPECT().VerifyToken(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, token string) (*domain.Principal, error) {
			switch {
			case len(token) > 7 && token[:7] == "client-":
				return &domain.Principal{Type: domain.PrincipalClient, Subject: token[7:], Issuer: "abank"}, nil
			case len(token) > 5 && token[:5] == "bank-":
				return &domain.Principal{Type: domain.PrincipalBank, Subject: token[5:], Issuer: token[5:]}, nil
			}
			return nil, apperror.ErrInvalidSignature()
		}).AnyTimes()

	f.router = SetupRouter(RouterDeps{
		AuthSvc:        f.auth,
		TokenSvc:       f.tokens,
		ConsentSvc:     f.consents,
		PeerConsentSvc: f.peers,
		AccountSvc:     f.accounts,
		PaymentSvc:     f.payments,
		SettlementSvc:  f.settlement,
		AggregatorSvc:  f.aggregator,
		Logger:         zerolog.Nop(),
	})
	return f
}

func (f *fixture) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decode(t, w)["error_code"].(string)
	return code
}

// --- Auth ---

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	f.auth.EXPECT().Login(gomock.Any(), "alice", "pw").Return("tok", expiry, nil)

	w := f.do(http.MethodPost, "/auth/login", "", map[string]string{"client_id": "alice", "password": "pw"})

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "tok", data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])
	assert.Equal(t, float64(expiry.Unix()), data["expires_at"])
}

func TestLogin_Failures(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.auth.EXPECT().Login(gomock.Any(), "alice", "nope").Return("", time.Time{}, apperror.ErrInvalidCredentials())

		w := f.do(http.MethodPost, "/auth/login", "", map[string]string{"client_id": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_001", errorCode(t, w))
	})

	t.Run("unsafe client id", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/auth/login", "", map[string]string{"client_id": "a b<c>", "password": "pw"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "SYS_003", errorCode(t, w))
	})
}

func TestKeySet_ServedBare(t *testing.T) {
	f := newFixture(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f.tokens.EXPECT().PublishedKeySet().Return(jwk.Set{Keys: []jwk.Key{jwk.FromRSA("ABANK-1", &key.PublicKey)}})

	w := f.do(http.MethodGet, "/.well-known/jwks.json", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))
	set, err := jwk.Parse(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "ABANK-1", set.Keys[0].KeyID)
	assert.True(t, key.PublicKey.Equal(jwk.RSAKeys(set)["ABANK-1"]))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/payments/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_004", errorCode(t, w))

	w = f.do(http.MethodGet, "/payments/"+uuid.NewString(), "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_002", errorCode(t, w))
}

// --- Consents ---

func TestConsentRequest_Created(t *testing.T) {
	f := newFixture(t)
	reqID := uuid.New()
	f.consents.EXPECT().RequestConsent(gomock.Any(), ports.ConsentRequestInput{
		ClientID:       "alice",
		RequestingBank: "bbank",
		Permissions:    []string{"ReadAccountsBasic", "ReadBalances"},
		Reason:         "aggregation",
	}).Return(&domain.ConsentRequest{ID: reqID, Status: domain.ConsentRequestPending}, nil)

	w := f.do(http.MethodPost, "/account-consents/request", "bank-bbank", map[string]interface{}{
		"client_id":       "alice",
		"requesting_bank": "bbank",
		"permissions":     []string{"ReadAccountsBasic", "ReadBalances"},
		"reason":          "aggregation",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, reqID.String(), data["request_id"])
	assert.Equal(t, "Pending", data["status"])
	assert.NotContains(t, data, "consent_id")
}

func TestConsentRequest_PaymentLimits(t *testing.T) {
	f := newFixture(t)
	f.consents.EXPECT().RequestConsent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in ports.ConsentRequestInput) (*domain.ConsentRequest, error) {
			require.NotNil(t, in.Limits)
			require.NotNil(t, in.Limits.MaxIndividualAmount)
			assert.Equal(t, "250.5", in.Limits.MaxIndividualAmount.String())
			assert.Equal(t, domain.PeriodWeek, in.Limits.PeriodType)
			require.NotNil(t, in.Limits.MaxPaymentsCount)
			assert.Equal(t, 4, *in.Limits.MaxPaymentsCount)
			return &domain.ConsentRequest{ID: uuid.New(), Status: domain.ConsentRequestPending}, nil
		})

	w := f.do(http.MethodPost, "/account-consents/request", "bank-bbank", map[string]interface{}{
		"client_id":   "alice",
		"permissions": []string{"InitiatePayment"},
		"payment_limits": map[string]interface{}{
			"max_individual_amount": "250.50",
			"period_type":           "week",
			"max_payments_count":    4,
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestConsentRequest_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		body   map[string]interface{}
		status int
		code   string
	}{
		{
			name:   "requesting bank differs from token issuer",
			token:  "bank-bbank",
			body:   map[string]interface{}{"client_id": "alice", "requesting_bank": "cbank", "permissions": []string{"ReadBalances"}},
			status: http.StatusUnauthorized,
			code:   "FED_003",
		},
		{
			name:   "unknown permission",
			token:  "bank-bbank",
			body:   map[string]interface{}{"client_id": "alice", "permissions": []string{"ReadEverything"}},
			status: http.StatusBadRequest,
			code:   "CNS_005",
		},
		{
			name:   "client token on bank route",
			token:  "client-alice",
			body:   map[string]interface{}{"client_id": "alice", "permissions": []string{"ReadBalances"}},
			status: http.StatusForbidden,
			code:   "AUTH_005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodPost, "/account-consents/request", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestConsentDecisions(t *testing.T) {
	f := newFixture(t)
	reqID := uuid.New()
	consentID := uuid.New()
	f.consents.EXPECT().Approve(gomock.Any(), "alice", reqID).
		Return(&domain.Consent{ID: consentID, ClientID: "alice", GrantedTo: "bbank"}, nil)
	f.consents.EXPECT().Reject(gomock.Any(), "alice", gomock.Any()).
		Return(nil, apperror.ErrInvalidTransition("request already decided"))

	w := f.do(http.MethodPost, "/account-consents/requests/"+reqID.String()+"/approve", "client-alice", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, consentID.String(), decode(t, w)["data"].(map[string]interface{})["consent_id"])

	w = f.do(http.MethodPost, "/account-consents/requests/"+uuid.NewString()+"/reject", "client-alice", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CNS_006", errorCode(t, w))

	w = f.do(http.MethodPost, "/account-consents/requests/not-a-uuid/approve", "client-alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/account-consents/requests/"+reqID.String()+"/approve", "bank-bbank", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_005", errorCode(t, w))
}

func TestConsentLists_EmptyIsArray(t *testing.T) {
	f := newFixture(t)
	f.consents.EXPECT().ListPendingRequests(gomock.Any(), "alice").Return(nil, nil)
	f.consents.EXPECT().ListConsents(gomock.Any(), "alice").Return(nil, nil)

	for _, path := range []string{"/account-consents/requests", "/account-consents"} {
		w := f.do(http.MethodGet, path, "client-alice", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, []interface{}{}, decode(t, w)["data"], path)
	}
}

// --- Accounts ---

func TestAccounts_BankNeedsCorrelation(t *testing.T) {
	consentID := uuid.New()

	t.Run("missing consent header", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/accounts", "bank-bbank", nil, "x-requesting-bank", "bbank")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "FED_004", errorCode(t, w))
	})

	t.Run("requesting bank mismatch", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/accounts", "bank-bbank", nil,
			"x-consent-id", consentID.String(), "x-requesting-bank", "cbank")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "FED_003", errorCode(t, w))
	})

	t.Run("consent forwarded to service", func(t *testing.T) {
		f := newFixture(t)
		bal := decimal.RequireFromString("12.50")
		f.accounts.EXPECT().ListAccounts(gomock.Any(), ports.AccountAccess{
			Principal:      domain.Principal{Type: domain.PrincipalBank, Subject: "bbank", Issuer: "bbank"},
			ConsentID:      consentID,
			RequestingBank: "bbank",
		}).Return([]domain.AccountView{{AccountNumber: "ACC-1", Currency: "RUB", Balance: &bal}}, nil)

		w := f.do(http.MethodGet, "/accounts", "bank-bbank", nil,
			"x-consent-id", consentID.String(), "x-requesting-bank", "bbank")
		require.Equal(t, http.StatusOK, w.Code)
		views := decode(t, w)["data"].([]interface{})
		require.Len(t, views, 1)
		assert.Equal(t, "ACC-1", views[0].(map[string]interface{})["account_number"])
	})

	t.Run("owner reads without headers", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.EXPECT().GetBalance(gomock.Any(), gomock.Any(), "ACC-1").DoAndReturn(
			func(_ context.Context, a ports.AccountAccess, _ string) (*domain.AccountView, error) {
				assert.True(t, a.Principal.IsClient())
				assert.Equal(t, uuid.Nil, a.ConsentID)
				return &domain.AccountView{AccountNumber: "ACC-1", Currency: "RUB"}, nil
			})
		w := f.do(http.MethodGet, "/accounts/ACC-1/balances", "client-alice", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTransactions_LimitValidated(t *testing.T) {
	f := newFixture(t)
	f.accounts.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), "ACC-1", 10).Return(nil, nil)

	w := f.do(http.MethodGet, "/accounts/ACC-1/transactions?limit=10", "client-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["data"])

	w = f.do(http.MethodGet, "/accounts/ACC-1/transactions?limit=5000", "client-alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Payments ---

func paymentBody() map[string]interface{} {
	return map[string]interface{}{
		"from_account": "ACC-1",
		"to_bank":      "BBank",
		"to_account":   "ACC-9",
		"amount":       "100.00",
		"currency":     "rub",
		"description":  "  rent  ",
	}
}

func TestInitiatePayment_Created(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.payments.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.PaymentRequest) (*domain.Payment, error) {
			assert.Equal(t, "alice", req.Principal.Subject)
			assert.Equal(t, "bbank", req.ToBank)
			assert.Equal(t, "RUB", req.Currency)
			assert.Equal(t, "rent", req.Description)
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(100)))
			assert.Nil(t, req.ConsentID)
			return &domain.Payment{ID: id, Status: domain.PaymentSettlementCompleted, Route: domain.RouteInterbank}, nil
		})

	w := f.do(http.MethodPost, "/payments", "client-alice", paymentBody())

	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, id.String(), data["payment_id"])
	assert.Equal(t, "AcceptedSettlementCompleted", data["status"])
}

func TestInitiatePayment_RejectedCarriesPayment(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.payments.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(
		&domain.Payment{ID: id, Status: domain.PaymentRejected, FailureReason: "peer refused"},
		apperror.ErrSettlementRejected(errors.New("peer refused")),
	)

	w := f.do(http.MethodPost, "/payments", "client-alice", paymentBody())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "PAY_009", resp["error_code"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, id.String(), data["payment_id"])
	assert.Equal(t, "Rejected", data["status"])
}

func TestInitiatePayment_BankConsentFromHeader(t *testing.T) {
	f := newFixture(t)
	consentID := uuid.New()
	f.payments.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.PaymentRequest) (*domain.Payment, error) {
			require.NotNil(t, req.ConsentID)
			assert.Equal(t, consentID, *req.ConsentID)
			assert.True(t, req.Principal.IsBank())
			return &domain.Payment{ID: uuid.New(), Status: domain.PaymentSettlementCompleted}, nil
		})

	w := f.do(http.MethodPost, "/payments", "bank-bbank", paymentBody(), "x-consent-id", consentID.String())
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/payments", "bank-bbank", paymentBody(), "x-consent-id", "nope")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "CNS_001", errorCode(t, w))
}

func TestInitiatePayment_BadDestination(t *testing.T) {
	f := newFixture(t)
	body := paymentBody()
	body["to_bank"] = "no such bank!"

	w := f.do(http.MethodPost, "/payments", "client-alice", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAY_004", errorCode(t, w))
}

func TestGetPayment_NotFound(t *testing.T) {
	f := newFixture(t)
	f.payments.EXPECT().GetPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNotFound("payment"))

	w := f.do(http.MethodGet, "/payments/"+uuid.NewString(), "client-alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAY_008", errorCode(t, w))

	w = f.do(http.MethodGet, "/payments/123", "client-alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Interbank ---

func TestAcceptTransfer(t *testing.T) {
	f := newFixture(t)
	paymentID := uuid.New()
	f.settlement.EXPECT().AcceptTransfer(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p domain.Principal, req ports.InboundTransferRequest) (*domain.InboundTransfer, error) {
			assert.Equal(t, "bbank", p.Issuer)
			assert.Equal(t, "bbank", req.FromBank)
			assert.Equal(t, "RUB", req.Currency)
			return &domain.InboundTransfer{PaymentID: req.PaymentID, Status: domain.PaymentSettlementCompleted}, nil
		})

	body := map[string]interface{}{
		"payment_id":   paymentID,
		"from_bank":    "BBANK",
		"from_account": "ACC-7",
		"to_account":   "ACC-1",
		"amount":       "25",
		"currency":     "rub",
	}
	w := f.do(http.MethodPost, "/interbank/transfers", "bank-bbank", body)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, paymentID.String(), data["payment_id"])
	assert.Equal(t, "AcceptedSettlementCompleted", data["status"])

	w = f.do(http.MethodPost, "/interbank/transfers", "client-alice", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Multibank ---

func TestMultibank_ConsentLifecycle(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.peers.EXPECT().RequestPeerConsent(gomock.Any(), ports.PeerConsentInput{
		ClientID:     "alice",
		BankCode:     "bbank",
		PeerClientID: "alice-at-b",
		Permissions:  []string{"ReadAccountsBasic"},
	}).Return(&domain.PeerConsent{ID: id, BankCode: "bbank", Status: domain.PeerConsentPending}, nil)
	f.peers.EXPECT().SyncPeerConsent(gomock.Any(), "alice", id).
		Return(&domain.PeerConsent{ID: id, BankCode: "bbank", Status: domain.PeerConsentAuthorised}, nil)
	f.peers.EXPECT().MarkPeerConsentRevoked(gomock.Any(), "alice", id).Return(nil)
	f.peers.EXPECT().HeldConsents(gomock.Any(), "alice").Return(nil, nil)

	w := f.do(http.MethodPost, "/multibank/consents", "client-alice", map[string]interface{}{
		"bank_code":      "bbank",
		"peer_client_id": "alice-at-b",
		"permissions":    []string{"ReadAccountsBasic"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/multibank/consents/"+id.String()+"/sync", "client-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(domain.PeerConsentAuthorised), decode(t, w)["data"].(map[string]interface{})["status"])

	w = f.do(http.MethodDelete, "/multibank/consents/"+id.String(), "client-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/multibank/consents", "client-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["data"])

	w = f.do(http.MethodGet, "/multibank/consents", "bank-bbank", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMultibank_Accounts(t *testing.T) {
	f := newFixture(t)
	f.aggregator.EXPECT().ListExternalAccounts(gomock.Any(), "alice").Return(&domain.AggregatedAccounts{
		ClientID:  "alice",
		FromCache: true,
		Banks:     []domain.BankAccounts{{BankCode: "bbank", Accounts: []domain.AccountView{{AccountNumber: "B-1"}}}},
	}, nil)
	f.aggregator.EXPECT().Refresh(gomock.Any(), "alice").Return(nil, apperror.ErrPeerUnavailable("bbank", errors.New("timeout")))

	w := f.do(http.MethodGet, "/multibank/accounts", "client-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["from_cache"])
	assert.Len(t, data["banks"], 1)

	w = f.do(http.MethodPost, "/multibank/accounts/refresh", "client-alice", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "FED_006", errorCode(t, w))
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	up := mocks.NewMockHealthChecker(ctrl)
	up.EXPECT().Name().Return("memory").AnyTimes()
	up.EXPECT().Ping(gomock.Any()).Return(nil).AnyTimes()
	down := mocks.NewMockHealthChecker(ctrl)
	down.EXPECT().Name().Return("redis").AnyTimes()
	down.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")).AnyTimes()

	r := gin.New()
	r.GET("/ok", HealthCheck(up))
	r.GET("/degraded", HealthCheck(up, down))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/degraded", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]interface{})["status"])
}
