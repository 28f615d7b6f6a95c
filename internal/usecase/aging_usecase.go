package usecase

import (
	"context"
	"time"

	"github.com/iho/bizledger/internal/domain"
)

// AgingUseCase computes receivable aging on demand. It is read-only
// and recomputes from the open invoices every time, so the report is
// always consistent with "today" at query time.
type AgingUseCase struct {
	accountRepo AccountRepository
	invoiceRepo InvoiceRepository
	policy      domain.AgingPolicy
}

// NewAgingUseCase creates a new AgingUseCase.
func NewAgingUseCase(accountRepo AccountRepository, invoiceRepo InvoiceRepository, policy domain.AgingPolicy) *AgingUseCase {
	return &AgingUseCase{
		accountRepo: accountRepo,
		invoiceRepo: invoiceRepo,
		policy:      policy,
	}
}

// ComputeAging buckets the account's outstanding balance by invoice
// age. today defaults to the current UTC time when zero.
func (uc *AgingUseCase) ComputeAging(ctx context.Context, accountID string, today time.Time) (domain.AgingReport, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return domain.AgingReport{}, err
	}

	if today.IsZero() {
		today = time.Now().UTC()
	}

	open, err := uc.invoiceRepo.ListOpenByAccount(ctx, accountID)
	if err != nil {
		return domain.AgingReport{}, err
	}

	return domain.ComputeAging(open, today, uc.policy), nil
}
