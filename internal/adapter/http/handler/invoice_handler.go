package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// PricingService defines the pricing behavior needed by InvoiceHandler.
type PricingService interface {
	PriceInvoice(ctx context.Context, input usecase.PriceInvoiceInput) (*usecase.PriceInvoiceResult, error)
}

// LedgerService defines the posting behavior needed by InvoiceHandler.
type LedgerService interface {
	PostInvoice(ctx context.Context, input usecase.PostInvoiceInput) (*usecase.PostInvoiceResult, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
}

// InvoiceHandler handles invoice pricing and posting requests.
type InvoiceHandler struct {
	pricingUC PricingService
	ledgerUC  LedgerService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(pricingUC PricingService, ledgerUC LedgerService) *InvoiceHandler {
	return &InvoiceHandler{
		pricingUC: pricingUC,
		ledgerUC:  ledgerUC,
	}
}

// Price computes per-line breakdowns and invoice totals without
// posting anything.
func (h *InvoiceHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req dto.PriceInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.pricingUC.PriceInvoice(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to price invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PriceInvoiceFromDomain(result))
}

// Post posts a finalized invoice to the ledger.
func (h *InvoiceHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.ledgerUC.PostInvoice(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostInvoiceFromDomain(result))
}

// Get retrieves a posted invoice by ID.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	invoice, err := h.ledgerUC.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}
