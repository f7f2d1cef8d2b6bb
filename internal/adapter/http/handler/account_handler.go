package handler

import (
	"strings"

	"federated-bank/internal/adapter/http/dto"
	"federated-bank/internal/adapter/http/middleware"
	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves account data to owners and to consented peers.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// access builds the read context. Bank callers arrive here only after
// RequireCorrelation has parsed the consent headers.
func access(c *gin.Context) (ports.AccountAccess, bool) {
	p, ok := principal(c)
	if !ok {
		return ports.AccountAccess{}, false
	}
	a := ports.AccountAccess{Principal: p}
	if p.IsBank() {
		a.ConsentID, _ = middleware.ConsentID(c)
		a.RequestingBank = strings.TrimSpace(c.GetHeader(middleware.HeaderRequestingBank))
	}
	return a, true
}

// List handles GET /accounts.
func (h *AccountHandler) List(c *gin.Context) {
	a, ok := access(c)
	if !ok {
		return
	}
	views, err := h.accountSvc.ListAccounts(c.Request.Context(), a)
	if err != nil {
		response.Error(c, err)
		return
	}
	if views == nil {
		views = []domain.AccountView{}
	}
	response.OK(c, views)
}

// Balance handles GET /accounts/:id/balances.
func (h *AccountHandler) Balance(c *gin.Context) {
	a, ok := access(c)
	if !ok {
		return
	}
	view, err := h.accountSvc.GetBalance(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Transactions handles GET /accounts/:id/transactions.
func (h *AccountHandler) Transactions(c *gin.Context) {
	a, ok := access(c)
	if !ok {
		return
	}
	var q dto.TransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	entries, err := h.accountSvc.ListTransactions(c.Request.Context(), a, c.Param("id"), q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	response.OK(c, entries)
}
