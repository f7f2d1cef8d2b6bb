package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"federated-bank/internal/adapter/storage/memory"
	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettlement(t *testing.T) (*SettlementServiceImpl, *bankFixture) {
	t.Helper()
	f := newBankFixture()
	f.addClient(t, "cli-b")
	f.addAccount(t, "cli-b", "beta-001", "0")
	f.seedCapital(t, "alpha", "1000")
	svc := NewSettlementService(f.accounts, f.ledger, f.inbound, NewCapitalLedger(f.capital, zerolog.Nop()),
		memory.NewIdempotencyCache(), f.store, zerolog.Nop())
	return svc, f
}

var alphaBank = domain.Principal{Type: domain.PrincipalBank, Subject: "alpha", Issuer: "alpha"}

func inboundReq(id uuid.UUID, amount string) ports.InboundTransferRequest {
	return ports.InboundTransferRequest{
		PaymentID:   id,
		FromBank:    "alpha",
		FromAccount: "40817-001",
		ToAccount:   "beta-001",
		Amount:      decimal.RequireFromString(amount),
		Currency:    "rub",
	}
}

func TestSettlementService_CreditsOnce(t *testing.T) {
	svc, f := newTestSettlement(t)
	ctx := context.Background()
	id := uuid.New()

	ack, err := svc.AcceptTransfer(ctx, alphaBank, inboundReq(id, "75.10"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSettlementCompleted, ack.Status)

	again, err := svc.AcceptTransfer(ctx, alphaBank, inboundReq(id, "75.10"))
	require.NoError(t, err)
	assert.Equal(t, ack.PaymentID, again.PaymentID)

	assert.True(t, f.balance(t, "beta-001").Equal(decimal.RequireFromString("75.10")))
	assert.True(t, f.capitalBalance(t, "alpha").Equal(decimal.RequireFromString("1075.10")))

	_, err = svc.AcceptTransfer(ctx, alphaBank, inboundReq(id, "75.11"))
	assert.ErrorIs(t, err, apperror.ErrDuplicatePayment())

	other := inboundReq(id, "75.10")
	other.Currency = "EUR"
	_, err = svc.AcceptTransfer(ctx, alphaBank, other)
	assert.ErrorIs(t, err, apperror.ErrDuplicatePayment())
}

func TestSettlementService_ConcurrentRedelivery(t *testing.T) {
	svc, f := newTestSettlement(t)
	ctx := context.Background()
	id := uuid.New()

	var wg sync.WaitGroup
	var okCount atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AcceptTransfer(ctx, alphaBank, inboundReq(id, "10")); err == nil {
				okCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), okCount.Load())
	assert.True(t, f.balance(t, "beta-001").Equal(decimal.NewFromInt(10)))
}

func TestSettlementService_Rejections(t *testing.T) {
	svc, f := newTestSettlement(t)
	ctx := context.Background()

	client := domain.Principal{Type: domain.PrincipalClient, Subject: "cli-b", Issuer: "beta"}
	_, err := svc.AcceptTransfer(ctx, client, inboundReq(uuid.New(), "1"))
	assert.ErrorIs(t, err, apperror.ErrWrongPrincipal(""))

	gamma := domain.Principal{Type: domain.PrincipalBank, Subject: "gamma", Issuer: "gamma"}
	_, err = svc.AcceptTransfer(ctx, gamma, inboundReq(uuid.New(), "1"))
	assert.ErrorIs(t, err, apperror.ErrSignatureMismatch())

	_, err = svc.AcceptTransfer(ctx, alphaBank, inboundReq(uuid.New(), "0"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount())

	_, err = svc.AcceptTransfer(ctx, alphaBank, inboundReq(uuid.New(), "0.015"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount())

	req := inboundReq(uuid.New(), "1")
	req.ToAccount = "beta-404"
	_, err = svc.AcceptTransfer(ctx, alphaBank, req)
	assert.ErrorIs(t, err, apperror.ErrInvalidDestination(""))

	req = inboundReq(uuid.New(), "1")
	req.Currency = "EUR"
	_, err = svc.AcceptTransfer(ctx, alphaBank, req)
	assert.ErrorIs(t, err, apperror.ErrCurrencyMismatch())

	assert.True(t, f.balance(t, "beta-001").IsZero())
	assert.True(t, f.capitalBalance(t, "alpha").Equal(decimal.NewFromInt(1000)))

	// A rejected id can be delivered again once fixed.
	_, err = svc.AcceptTransfer(ctx, alphaBank, inboundReq(req.PaymentID, "1"))
	require.NoError(t, err)
}

// loopbackPeer delivers transfers straight into another bank's settlement
// service, as the HTTP surface would.
type loopbackPeer struct {
	ports.PeerClient
	target *SettlementServiceImpl
	from   domain.Principal
}

func (l loopbackPeer) DeliverTransfer(ctx context.Context, _ domain.Peer, _ string, d ports.TransferDelivery) (*ports.TransferAck, error) {
	in, err := l.target.AcceptTransfer(ctx, l.from, ports.InboundTransferRequest{
		PaymentID:   d.PaymentID,
		FromBank:    d.FromBank,
		FromAccount: d.FromAccount,
		ToAccount:   d.ToAccount,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Description: d.Description,
	})
	if err != nil {
		return nil, err
	}
	return &ports.TransferAck{PaymentID: in.PaymentID, Status: in.Status}, nil
}

type fixedToken struct{ ports.TokenService }

func (fixedToken) IssueBankToken() (string, time.Time, error) {
	return "t", time.Now().Add(time.Minute), nil
}

func TestSettlement_TwoBankRoundTrip(t *testing.T) {
	ctx := context.Background()
	beta, betaStore := newTestSettlement(t)

	alpha := newBankFixture()
	alpha.addClient(t, "cli-a")
	alpha.addAccount(t, "cli-a", "40817-001", "500")
	alpha.seedCapital(t, "beta", "1000")
	router := NewPaymentService(PaymentDeps{
		Accounts:   alpha.accounts,
		Ledger:     alpha.ledger,
		Payments:   alpha.payments,
		Capital:    NewCapitalLedger(alpha.capital, zerolog.Nop()),
		Directory:  staticDirectory{"beta": domain.Peer{Code: "beta"}},
		Peers:      loopbackPeer{target: beta, from: alphaBank},
		Tokens:     fixedToken{},
		Cache:      memory.NewIdempotencyCache(),
		Transactor: alpha.store,
	}, PaymentConfig{BankCode: "alpha", RemoteTimeout: time.Second}, zerolog.Nop())

	p, err := router.InitiatePayment(ctx, ports.PaymentRequest{
		Principal:   domain.Principal{Type: domain.PrincipalClient, Subject: "cli-a", Issuer: "alpha"},
		FromAccount: "40817-001",
		ToBank:      "beta",
		ToAccount:   "beta-001",
		Amount:      decimal.RequireFromString("199.99"),
		Currency:    "RUB",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSettlementCompleted, p.Status)

	// Money left alpha's customer and alpha's position with beta; it arrived
	// at beta's customer and beta's position with alpha.
	assert.True(t, alpha.balance(t, "40817-001").Equal(decimal.RequireFromString("300.01")))
	assert.True(t, alpha.capitalBalance(t, "beta").Equal(decimal.RequireFromString("800.01")))
	assert.True(t, betaStore.balance(t, "beta-001").Equal(decimal.RequireFromString("199.99")))
	assert.True(t, betaStore.capitalBalance(t, "alpha").Equal(decimal.RequireFromString("1199.99")))
}
