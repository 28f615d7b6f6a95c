package usecase

import (
	"context"

	"github.com/iho/bizledger/internal/domain"
)

// PricingUseCase exposes the pure invoice computation: per-line
// breakdowns and invoice-level aggregation. It holds no state and has
// no side effects; screens call it to preview totals before posting.
type PricingUseCase struct{}

// NewPricingUseCase creates a new PricingUseCase.
func NewPricingUseCase() *PricingUseCase {
	return &PricingUseCase{}
}

// ComputeLine derives the monetary breakdown for a single line item.
func (uc *PricingUseCase) ComputeLine(_ context.Context, item domain.LineItem) (domain.LineComputation, error) {
	return item.Compute()
}

// AggregateInvoice sums per-line computations into invoice totals.
func (uc *PricingUseCase) AggregateInvoice(_ context.Context, lines []domain.LineComputation) (domain.InvoiceTotals, error) {
	return domain.AggregateLines(lines)
}

// PriceInvoiceInput represents input for pricing a full invoice.
type PriceInvoiceInput struct {
	Items []domain.LineItem
}

// PriceInvoiceResult carries the per-line breakdowns and the totals.
type PriceInvoiceResult struct {
	Lines  []domain.LineComputation
	Totals domain.InvoiceTotals
}

// PriceInvoice computes every line and the invoice totals in one pass.
func (uc *PricingUseCase) PriceInvoice(_ context.Context, input PriceInvoiceInput) (*PriceInvoiceResult, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}

	lines := make([]domain.LineComputation, 0, len(input.Items))
	for _, item := range input.Items {
		lc, err := item.Compute()
		if err != nil {
			return nil, err
		}
		lines = append(lines, lc)
	}

	totals, err := domain.AggregateLines(lines)
	if err != nil {
		return nil, err
	}

	return &PriceInvoiceResult{Lines: lines, Totals: totals}, nil
}
