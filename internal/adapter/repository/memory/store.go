package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// Store is an in-process implementation of the repository interfaces,
// for tests and anywhere a database is overkill. A transaction holds
// the store-wide mutex, so postings are serialized globally, which
// trivially satisfies the single-writer-per-account rule.
//
// Writes go through copies; the live maps only change on Commit-free
// direct writes or staged tx writes, so Rollback restores the maps
// taken at Begin.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*domain.Account
	invoices    map[string]*domain.Invoice
	receivables map[string]*domain.Receivable
	events      []*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		invoices:    make(map[string]*domain.Invoice),
		receivables: make(map[string]*domain.Receivable),
	}
}

type tx struct {
	store *Store
	done  bool

	accounts    map[string]*domain.Account
	invoices    map[string]*domain.Invoice
	receivables map[string]*domain.Receivable
	events      []*domain.OutboxEvent
}

// Begin locks the store and snapshots it for rollback.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	s.mu.Lock()

	return &tx{
		store:       s,
		accounts:    copyMap(s.accounts),
		invoices:    copyMap(s.invoices),
		receivables: copyMap(s.receivables),
		events:      append([]*domain.OutboxEvent(nil), s.events...),
	}, nil
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.accounts = t.accounts
	t.store.invoices = t.invoices
	t.store.receivables = t.receivables
	t.store.events = t.events
	t.store.mu.Unlock()
	return nil
}

// AccountRepository returns the account view of the store.
func (s *Store) AccountRepository() *AccountRepository { return &AccountRepository{store: s} }

// InvoiceRepository returns the invoice view of the store.
func (s *Store) InvoiceRepository() *InvoiceRepository { return &InvoiceRepository{store: s} }

// ReceivableRepository returns the receivable view of the store.
func (s *Store) ReceivableRepository() *ReceivableRepository {
	return &ReceivableRepository{store: s}
}

// OutboxRepository returns the outbox view of the store.
func (s *Store) OutboxRepository() *OutboxRepository { return &OutboxRepository{store: s} }

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *account
	r.store.accounts[account.ID] = &c
	return nil
}

func (r *AccountRepository) CreateTx(ctx context.Context, _ usecase.Transaction, account *domain.Account) error {
	c := *account
	r.store.accounts[account.ID] = &c
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getAccount(id)
}

func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Account, error) {
	return r.getAccount(id)
}

func (r *AccountRepository) getAccount(id string) (*domain.Account, error) {
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *account
	return &c, nil
}

func (r *AccountRepository) Update(ctx context.Context, _ usecase.Transaction, account *domain.Account) error {
	if _, ok := r.store.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	c := *account
	r.store.accounts[account.ID] = &c
	return nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		c := *a
		accounts = append(accounts, &c)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })

	return paginate(accounts, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	store *Store
}

func (r *InvoiceRepository) Create(ctx context.Context, _ usecase.Transaction, invoice *domain.Invoice) error {
	if _, ok := r.store.invoices[invoice.ID]; ok {
		return domain.ErrDuplicateInvoice
	}
	c := *invoice
	r.store.invoices[invoice.ID] = &c
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoice, ok := r.store.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	c := *invoice
	return &c, nil
}

func (r *InvoiceRepository) Exists(ctx context.Context, _ usecase.Transaction, id string) (bool, error) {
	_, ok := r.store.invoices[id]
	return ok, nil
}

func (r *InvoiceRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoices := r.byAccount(accountID, false)
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.After(invoices[j].Date) })

	return paginate(invoices, limit, offset), nil
}

func (r *InvoiceRepository) ListOpenByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.openByAccount(accountID), nil
}

func (r *InvoiceRepository) ListOpenByAccountForUpdate(ctx context.Context, _ usecase.Transaction, accountID string) ([]*domain.Invoice, error) {
	return r.openByAccount(accountID), nil
}

func (r *InvoiceRepository) openByAccount(accountID string) []*domain.Invoice {
	invoices := r.byAccount(accountID, true)
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.Before(invoices[j].Date) })
	return invoices
}

func (r *InvoiceRepository) byAccount(accountID string, openOnly bool) []*domain.Invoice {
	invoices := make([]*domain.Invoice, 0)
	for _, inv := range r.store.invoices {
		if inv.AccountID != accountID {
			continue
		}
		if openOnly && inv.Status != domain.InvoiceStatusOpen {
			continue
		}
		c := *inv
		invoices = append(invoices, &c)
	}
	return invoices
}

func (r *InvoiceRepository) UpdateBalance(ctx context.Context, _ usecase.Transaction, id string, balance domain.Money, status domain.InvoiceStatus, updatedAt time.Time) error {
	invoice, ok := r.store.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	c := *invoice
	c.BalanceDue = balance
	c.Status = status
	r.store.invoices[id] = &c
	return nil
}

// ReceivableRepository implements usecase.ReceivableRepository.
type ReceivableRepository struct {
	store *Store
}

func (r *ReceivableRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Receivable, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getReceivable(accountID)
}

func (r *ReceivableRepository) GetByAccountForUpdate(ctx context.Context, _ usecase.Transaction, accountID string) (*domain.Receivable, error) {
	return r.getReceivable(accountID)
}

func (r *ReceivableRepository) getReceivable(accountID string) (*domain.Receivable, error) {
	receivable, ok := r.store.receivables[accountID]
	if !ok {
		return nil, domain.ErrReceivableNotFound
	}
	c := *receivable
	return &c, nil
}

func (r *ReceivableRepository) Upsert(ctx context.Context, _ usecase.Transaction, receivable *domain.Receivable) error {
	c := *receivable
	r.store.receivables[receivable.AccountID] = &c
	return nil
}

func (r *ReceivableRepository) Delete(ctx context.Context, _ usecase.Transaction, accountID string) error {
	delete(r.store.receivables, accountID)
	return nil
}

func (r *ReceivableRepository) List(ctx context.Context, limit, offset int) ([]*domain.Receivable, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	receivables := make([]*domain.Receivable, 0, len(r.store.receivables))
	for _, rec := range r.store.receivables {
		c := *rec
		receivables = append(receivables, &c)
	}
	sort.Slice(receivables, func(i, j int) bool {
		return receivables[i].TotalReceivable.Amount.GreaterThan(receivables[j].TotalReceivable.Amount)
	})

	return paginate(receivables, limit, offset), nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

func (r *OutboxRepository) Create(ctx context.Context, _ usecase.Transaction, event *domain.OutboxEvent) error {
	c := *event
	r.store.events = append(r.store.events, &c)
	return nil
}

func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, e := range r.store.events {
		if e.Published {
			continue
		}
		c := *e
		events = append(events, &c)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, e := range r.store.events {
		if e.ID != id {
			continue
		}
		c := *e
		c.Published = true
		t := publishedAt
		c.PublishedAt = &t
		r.store.events[i] = &c
		return nil
	}
	return nil
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.events[:0]
	for _, e := range r.store.events {
		if e.Published && e.CreatedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.events = kept
	return nil
}
