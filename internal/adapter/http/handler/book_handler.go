package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// BookService defines the behavior needed by BookHandler.
type BookService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyResult, error)
	ListReceivables(ctx context.Context, limit, offset int) ([]*domain.Receivable, error)
}

// BookHandler handles book-wide receivable requests.
type BookHandler struct {
	bookUC BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookUC BookService) *BookHandler {
	return &BookHandler{bookUC: bookUC}
}

// ListReceivables lists outstanding receivables across all accounts.
func (h *BookHandler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	receivables, err := h.bookUC.ListReceivables(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list receivables", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceivablesFromDomain(receivables))
}

// CheckConsistency verifies every receivable against its account's
// open invoice balances. An inconsistent book returns 409 with the
// per-account detail.
func (h *BookHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentBook) && result != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromDomain(result))
			return
		}
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(result))
}
