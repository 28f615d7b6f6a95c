package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iho/bizledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	invoiceRepo    InvoiceRepository
	receivableRepo ReceivableRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	cache          Cache
	agingPolicy    domain.AgingPolicy
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	invoiceRepo InvoiceRepository,
	receivableRepo ReceivableRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	agingPolicy domain.AgingPolicy,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		invoiceRepo:    invoiceRepo,
		receivableRepo: receivableRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		cache:          cache,
		agingPolicy:    agingPolicy,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name     string
	Kind     domain.AccountKind
	Currency string
}

// CreateAccount creates a new trading account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if input.Kind == "" {
		input.Kind = domain.AccountCustomer
	}
	if err := domain.ValidateAccountKind(input.Kind); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = domain.DefaultCurrency
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:                uc.idGen.Generate(),
		Name:              input.Name,
		Kind:              input.Kind,
		Currency:          input.Currency,
		TotalValue:        domain.ZeroMoney(input.Currency),
		AverageOrderValue: domain.ZeroMoney(input.Currency),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": account.ID,
			"name":       account.Name,
			"kind":       string(account.Kind),
			"currency":   account.Currency,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// AccountSummary bundles the account with its receivable state and a
// freshly computed aging report.
type AccountSummary struct {
	Account    *domain.Account    `json:"account"`
	Receivable *domain.Receivable `json:"receivable,omitempty"`
	Aging      domain.AgingReport `json:"aging"`
}

// GetAccountSummary returns the account with receivable and aging,
// recomputed from the open invoices at call time. The serialized
// summary is cached briefly; postings invalidate the key.
func (uc *AccountUseCase) GetAccountSummary(ctx context.Context, id string) (*AccountSummary, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, accountSummaryCacheKey(id)); err == nil && cached != "" {
			var summary AccountSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &AccountSummary{Account: account}

	receivable, err := uc.receivableRepo.GetByAccount(ctx, id)
	switch {
	case errors.Is(err, domain.ErrReceivableNotFound):
	case err != nil:
		return nil, err
	default:
		summary.Receivable = receivable
	}

	open, err := uc.invoiceRepo.ListOpenByAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	summary.Aging = domain.ComputeAging(open, time.Now().UTC(), uc.agingPolicy)
	if summary.Receivable != nil {
		summary.Receivable.Refresh(summary.Aging)
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = uc.cache.Set(ctx, accountSummaryCacheKey(id), string(raw), AccountSummaryCacheTTL)
		}
	}

	return summary, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// ListInvoicesInput represents input for listing an account's invoices.
type ListInvoicesInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListInvoices lists an account's invoices, newest first.
func (uc *AccountUseCase) ListInvoices(ctx context.Context, input ListInvoicesInput) ([]*domain.Invoice, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.invoiceRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}
