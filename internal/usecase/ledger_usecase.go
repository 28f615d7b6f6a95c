package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
)

var maxInvoiceAmount = decimal.RequireFromString(MaxInvoiceAmount)

// LedgerUseCase posts finalized invoices and payments against trading
// accounts. All mutation of Account and Receivable records goes through
// here; postings against the same account are serialized by the
// account row lock taken inside the transaction.
type LedgerUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	invoiceRepo    InvoiceRepository
	receivableRepo ReceivableRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	cache          Cache
	retrier        Retrier
	agingPolicy    domain.AgingPolicy
}

// NewLedgerUseCase creates a new LedgerUseCase. cache and retrier may
// be nil when no summary cache or conflict retry is wired (CLI, tests).
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	invoiceRepo InvoiceRepository,
	receivableRepo ReceivableRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
	agingPolicy domain.AgingPolicy,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		invoiceRepo:    invoiceRepo,
		receivableRepo: receivableRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		cache:          cache,
		retrier:        retrier,
		agingPolicy:    agingPolicy,
	}
}

// run executes op, retrying transient storage conflicts when a retrier
// is configured. op must be safe to re-run from scratch; both posting
// paths re-read all state inside the transaction.
func (uc *LedgerUseCase) run(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// PostInvoiceInput represents input for posting an invoice.
// InvoiceID is optional; when empty a new ID is generated. Supplying an
// ID that was already posted is rejected with ErrDuplicateInvoice.
type PostInvoiceInput struct {
	InvoiceID     string
	AccountID     string
	Date          time.Time
	PaymentMethod domain.PaymentMethod
	Items         []domain.LineItem
	AmountPaid    domain.Money
}

// PostInvoiceResult carries the posted invoice and the updated ledger
// records. Receivable is nil when the invoice was fully paid at sale
// time and the account has no other outstanding balance.
type PostInvoiceResult struct {
	Invoice    *domain.Invoice
	Account    *domain.Account
	Receivable *domain.Receivable
}

// PostInvoice prices the items, posts the invoice to the account and
// upserts the receivable, all in one transaction.
func (uc *LedgerUseCase) PostInvoice(ctx context.Context, input PostInvoiceInput) (*PostInvoiceResult, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}

	var result *PostInvoiceResult
	err := uc.run(ctx, func() error {
		r, err := uc.postInvoice(ctx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, input.AccountID)
	return result, nil
}

func (uc *LedgerUseCase) postInvoice(ctx context.Context, input PostInvoiceInput) (*PostInvoiceResult, error) {
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the account row: single writer per account.
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	invoiceID := input.InvoiceID
	if invoiceID == "" {
		invoiceID = uc.idGen.Generate()
	} else {
		exists, err := uc.invoiceRepo.Exists(ctx, tx, invoiceID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateInvoice
		}
	}

	invoice, err := domain.BuildInvoice(invoiceID, account.ID, date, input.PaymentMethod, input.Items, input.AmountPaid)
	if err != nil {
		return nil, err
	}
	if invoice.Totals.GrandTotal.Amount.GreaterThan(maxInvoiceAmount) {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	invoice.CreatedAt = now

	if err := account.ApplyInvoice(invoice); err != nil {
		return nil, err
	}
	account.Version++
	account.UpdatedAt = now

	if err := uc.invoiceRepo.Create(ctx, tx, invoice); err != nil {
		return nil, err
	}
	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	var receivable *domain.Receivable
	if invoice.BalanceDue.IsPositive() {
		receivable, err = uc.upsertReceivable(ctx, tx, account.ID, invoice, now)
		if err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   invoice.ID,
		AggregateType: domain.AggregateTypeInvoice,
		EventType:     domain.EventTypeInvoicePosted,
		Payload: map[string]any{
			"invoice_id":  invoice.ID,
			"account_id":  account.ID,
			"grand_total": invoice.Totals.GrandTotal.Amount.String(),
			"balance_due": invoice.BalanceDue.Amount.String(),
			"currency":    invoice.Totals.GrandTotal.Currency,
			"date":        invoice.Date.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PostInvoiceResult{
		Invoice:    invoice,
		Account:    account,
		Receivable: receivable,
	}, nil
}

// upsertReceivable folds the unpaid balance into the account's
// receivable, creating it on the first unpaid invoice, and refreshes
// the date-derived status from the open invoices now visible in the
// transaction.
func (uc *LedgerUseCase) upsertReceivable(ctx context.Context, tx Transaction, accountID string, invoice *domain.Invoice, now time.Time) (*domain.Receivable, error) {
	receivable, err := uc.receivableRepo.GetByAccountForUpdate(ctx, tx, accountID)
	switch {
	case errors.Is(err, domain.ErrReceivableNotFound):
		receivable = domain.NewReceivable(accountID, invoice.BalanceDue, invoice.Date)
	case err != nil:
		return nil, err
	default:
		if err := receivable.ApplyInvoice(invoice.BalanceDue, invoice.Date); err != nil {
			return nil, err
		}
	}

	open, err := uc.invoiceRepo.ListOpenByAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	receivable.Refresh(domain.ComputeAging(open, now, uc.agingPolicy))
	receivable.UpdatedAt = now

	if err := uc.receivableRepo.Upsert(ctx, tx, receivable); err != nil {
		return nil, err
	}
	return receivable, nil
}

// GetInvoice retrieves a posted invoice by ID.
func (uc *LedgerUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}

// PostPaymentInput represents input for posting a payment against an
// account's outstanding receivable.
type PostPaymentInput struct {
	AccountID string
	Amount    domain.Money
}

// PostPaymentResult carries the updated receivable. Receivable is nil
// when the payment settled everything the account owed.
type PostPaymentResult struct {
	Receivable *domain.Receivable
	Settled    bool
}

// PostPayment allocates a payment to the account's open invoices,
// oldest first, and reduces the receivable. Overpayment is rejected;
// the engine does not keep credit balances.
func (uc *LedgerUseCase) PostPayment(ctx context.Context, input PostPaymentInput) (*PostPaymentResult, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var result *PostPaymentResult
	err := uc.run(ctx, func() error {
		r, err := uc.postPayment(ctx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, input.AccountID)
	return result, nil
}

func (uc *LedgerUseCase) postPayment(ctx context.Context, input PostPaymentInput) (*PostPaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Same lock order as PostInvoice: account row first.
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	receivable, err := uc.receivableRepo.GetByAccountForUpdate(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(receivable.TotalReceivable) {
		return nil, domain.ErrOverPayment
	}

	open, err := uc.invoiceRepo.ListOpenByAccountForUpdate(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Date.Before(open[j].Date) })

	now := time.Now().UTC()
	remaining := input.Amount
	for _, inv := range open {
		if !remaining.IsPositive() {
			break
		}
		absorbed, err := inv.Settle(remaining)
		if err != nil {
			return nil, err
		}
		if absorbed.IsZero() {
			continue
		}
		if remaining, err = remaining.Sub(absorbed); err != nil {
			return nil, err
		}
		if err := uc.invoiceRepo.UpdateBalance(ctx, tx, inv.ID, inv.BalanceDue, inv.Status, now); err != nil {
			return nil, err
		}
	}

	if err := receivable.ApplyPayment(input.Amount); err != nil {
		return nil, err
	}

	settled := receivable.Settled()
	if settled {
		if err := uc.receivableRepo.Delete(ctx, tx, account.ID); err != nil {
			return nil, err
		}
	} else {
		stillOpen := open[:0]
		for _, inv := range open {
			if inv.Status == domain.InvoiceStatusOpen {
				stillOpen = append(stillOpen, inv)
			}
		}
		receivable.Refresh(domain.ComputeAging(stillOpen, now, uc.agingPolicy))
		receivable.UpdatedAt = now
		if err := uc.receivableRepo.Upsert(ctx, tx, receivable); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypePaymentPosted,
		Payload: map[string]any{
			"account_id":           account.ID,
			"amount":               input.Amount.Amount.String(),
			"currency":             input.Amount.Currency,
			"remaining_receivable": receivable.TotalReceivable.Amount.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	result := &PostPaymentResult{Settled: settled}
	if !settled {
		result.Receivable = receivable
	}
	return result, nil
}

// invalidateSummary drops the cached account summary after a posting.
// Best effort: a failed invalidation only shortens to the cache TTL.
func (uc *LedgerUseCase) invalidateSummary(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, accountSummaryCacheKey(accountID))
}

func accountSummaryCacheKey(accountID string) string {
	return "account_summary:" + accountID
}
