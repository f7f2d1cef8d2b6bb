// Package peer talks to other banks of the federation over HTTP.
package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Correlation headers carried on every consent-scoped peer call.
const (
	HeaderConsentID      = "x-consent-id"
	HeaderRequestingBank = "x-requesting-bank"
	HeaderRequestID      = "X-Request-ID"
)

const maxResponseBytes = 4 << 20

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PeerClient. It performs exactly one request per
// call; deadlines come from ctx.
type Client struct {
	httpClient HTTPClient
	ownCode    string
	log        zerolog.Logger
}

// NewClient creates a peer client that identifies itself as ownCode.
func NewClient(httpClient HTTPClient, ownCode string, log zerolog.Logger) *Client {
	return &Client{httpClient: httpClient, ownCode: ownCode, log: log}
}

// envelope accepts both the enveloped {"data": ...} shape and a bare object.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
}

type transferBody struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	FromBank    string          `json:"from_bank"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

type transferReply struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
}

type consentBody struct {
	ClientID       string   `json:"client_id"`
	RequestingBank string   `json:"requesting_bank"`
	Permissions    []string `json:"permissions"`
	Reason         string   `json:"reason,omitempty"`
}

type consentReply struct {
	RequestID string     `json:"request_id"`
	ID        string     `json:"id"`
	ConsentID string     `json:"consent_id"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// DeliverTransfer posts the settlement leg to the destination bank.
func (c *Client) DeliverTransfer(ctx context.Context, p domain.Peer, token string, d ports.TransferDelivery) (*ports.TransferAck, error) {
	body := transferBody{
		PaymentID:   d.PaymentID,
		FromBank:    d.FromBank,
		FromAccount: d.FromAccount,
		ToAccount:   d.ToAccount,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Description: d.Description,
	}
	var reply transferReply
	if err := c.do(ctx, p, "deliver_transfer", http.MethodPost, "/interbank/transfers", token, nil, body, &reply); err != nil {
		return nil, err
	}
	if reply.PaymentID != uuid.Nil && reply.PaymentID != d.PaymentID {
		return nil, fmt.Errorf("peer %s acknowledged payment %s, expected %s", p.Code, reply.PaymentID, d.PaymentID)
	}
	status := domain.PaymentStatus(reply.Status)
	if status == "" {
		status = domain.PaymentSettlementCompleted
	}
	return &ports.TransferAck{PaymentID: d.PaymentID, Status: status}, nil
}

// ListAccounts reads the client's accounts at the peer under consentID.
func (c *Client) ListAccounts(ctx context.Context, p domain.Peer, token, consentID string) ([]domain.AccountView, error) {
	headers := map[string]string{
		HeaderConsentID:      consentID,
		HeaderRequestingBank: c.ownCode,
	}
	var accounts []domain.AccountView
	if err := c.do(ctx, p, "list_accounts", http.MethodGet, "/accounts", token, headers, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestConsent opens a consent request at the peer.
func (c *Client) RequestConsent(ctx context.Context, p domain.Peer, token string, call ports.PeerConsentCall) (*ports.PeerConsentReply, error) {
	body := consentBody{
		ClientID:       call.PeerClientID,
		RequestingBank: call.RequestingBank,
		Permissions:    domain.PermissionStrings(call.Permissions),
		Reason:         call.Reason,
	}
	headers := map[string]string{HeaderRequestingBank: call.RequestingBank}
	var reply consentReply
	if err := c.do(ctx, p, "request_consent", http.MethodPost, "/account-consents/request", token, headers, body, &reply); err != nil {
		return nil, err
	}
	return reply.toPort(), nil
}

// GetConsentRequest polls the state of a consent request at the peer.
func (c *Client) GetConsentRequest(ctx context.Context, p domain.Peer, token, requestID string) (*ports.PeerConsentReply, error) {
	headers := map[string]string{HeaderRequestingBank: c.ownCode}
	path := "/account-consents/requests/" + url.PathEscape(requestID)
	var reply consentReply
	if err := c.do(ctx, p, "get_consent_request", http.MethodGet, path, token, headers, nil, &reply); err != nil {
		return nil, err
	}
	out := reply.toPort()
	if out.RequestID == "" {
		out.RequestID = requestID
	}
	return out, nil
}

func (r consentReply) toPort() *ports.PeerConsentReply {
	id := r.RequestID
	if id == "" {
		id = r.ID
	}
	return &ports.PeerConsentReply{
		RequestID: id,
		ConsentID: r.ConsentID,
		Status:    r.Status,
		ExpiresAt: r.ExpiresAt,
	}
}

func (c *Client) do(ctx context.Context, p domain.Peer, op, method, path, token string, headers map[string]string, in, out any) error {
	defer metrics.ObservePeer(p.Code, op, time.Now())

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.APIURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("bank_code", p.Code).Str("operation", op).Msg("peer call failed")
		return fmt.Errorf("%s at %s: %w", op, p.Code, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Str("bank_code", p.Code).
			Str("operation", op).
			Int("status", resp.StatusCode).
			Str("error_code", env.ErrorCode).
			Msg("peer rejected call")
		return &ports.PeerError{
			Bank:       p.Code,
			HTTPStatus: resp.StatusCode,
			Code:       env.ErrorCode,
			Message:    env.Message,
		}
	}

	if out == nil {
		return nil
	}
	payload := raw
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response from %s: %w", op, p.Code, err)
	}
	return nil
}
