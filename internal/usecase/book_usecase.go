package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/bizledger/internal/domain"
)

var (
	// ErrInconsistentBook is returned when a receivable does not match
	// the sum of its account's open invoice balances.
	ErrInconsistentBook = errors.New("receivables book is inconsistent")
)

// BookUseCase handles book-wide receivable operations.
type BookUseCase struct {
	accountRepo    AccountRepository
	invoiceRepo    InvoiceRepository
	receivableRepo ReceivableRepository
}

// NewBookUseCase creates a new BookUseCase.
func NewBookUseCase(accountRepo AccountRepository, invoiceRepo InvoiceRepository, receivableRepo ReceivableRepository) *BookUseCase {
	return &BookUseCase{
		accountRepo:    accountRepo,
		invoiceRepo:    invoiceRepo,
		receivableRepo: receivableRepo,
	}
}

// AccountCheck is the consistency verdict for one account.
type AccountCheck struct {
	AccountID       string
	Recorded        domain.Money
	FromOpenBalance domain.Money
	Consistent      bool
}

// ConsistencyResult reports the book-wide check.
type ConsistencyResult struct {
	Consistent bool
	Accounts   []AccountCheck
	CheckedAt  time.Time
}

// CheckConsistency verifies that every receivable equals the sum of
// its account's open invoice balances.
func (uc *BookUseCase) CheckConsistency(ctx context.Context) (*ConsistencyResult, error) {
	receivables, err := uc.receivableRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, err
	}

	result := &ConsistencyResult{
		Consistent: true,
		CheckedAt:  time.Now().UTC(),
	}

	for _, r := range receivables {
		open, err := uc.invoiceRepo.ListOpenByAccount(ctx, r.AccountID)
		if err != nil {
			return nil, err
		}

		sum := domain.ZeroMoney(r.TotalReceivable.Currency)
		for _, inv := range open {
			if sum, err = sum.Add(inv.BalanceDue); err != nil {
				return nil, err
			}
		}

		check := AccountCheck{
			AccountID:       r.AccountID,
			Recorded:        r.TotalReceivable,
			FromOpenBalance: sum,
			Consistent:      r.TotalReceivable.Equal(sum),
		}
		if !check.Consistent {
			result.Consistent = false
		}
		result.Accounts = append(result.Accounts, check)
	}

	if !result.Consistent {
		return result, ErrInconsistentBook
	}
	return result, nil
}

// ListReceivables lists receivables across the whole book.
func (uc *BookUseCase) ListReceivables(ctx context.Context, limit, offset int) ([]*domain.Receivable, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.receivableRepo.List(ctx, limit, offset)
}
