package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountSummary(ctx context.Context, id string) (*usecase.AccountSummary, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListInvoices(ctx context.Context, input usecase.ListInvoicesInput) ([]*domain.Invoice, error)
}

// PaymentService defines the payment behavior needed by AccountHandler.
type PaymentService interface {
	PostPayment(ctx context.Context, input usecase.PostPaymentInput) (*usecase.PostPaymentResult, error)
}

// AgingService defines the aging behavior needed by AccountHandler.
type AgingService interface {
	ComputeAging(ctx context.Context, accountID string, today time.Time) (domain.AgingReport, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	paymentUC PaymentService
	agingUC   AgingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, paymentUC PaymentService, agingUC AgingService) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		paymentUC: paymentUC,
		agingUC:   agingUC,
	}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Summary returns the account with its receivable and a fresh aging
// report.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	summary, err := h.accountUC.GetAccountSummary(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountSummaryFromDomain(summary))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// ListInvoices lists an account's invoices, newest first.
func (h *AccountHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	invoices, err := h.accountUC.ListInvoices(r.Context(), usecase.ListInvoicesInput{
		AccountID: id,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list invoices", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInvoicesResponse{
		Invoices: dto.InvoicesFromDomain(invoices),
		Total:    int64(len(invoices)),
	})
}

// Aging returns the date-based aging breakdown computed at call time.
func (h *AccountHandler) Aging(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	report, err := h.agingUC.ComputeAging(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute aging", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AgingFromDomain(report))
}

// PostPayment records a payment against the account's receivable.
func (h *AccountHandler) PostPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.PostPayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostPaymentFromDomain(result))
}
