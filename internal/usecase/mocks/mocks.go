package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu    sync.Mutex
	Began []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Began = append(m.Began, tx)
	return tx, nil
}

// MockIDGenerator produces sequential IDs unless overridden.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu   sync.Mutex
	next int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + strconv.Itoa(m.next)
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	CreateTxFunc         func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.Seed(account)
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	m.Seed(account)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account)
	}
	m.Seed(account)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	if offset >= len(accounts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end], nil
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	CreateFunc                     func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Invoice, error)
	ExistsFunc                     func(ctx context.Context, tx usecase.Transaction, id string) (bool, error)
	ListByAccountFunc              func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Invoice, error)
	ListOpenByAccountFunc          func(ctx context.Context, accountID string) ([]*domain.Invoice, error)
	ListOpenByAccountForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Invoice, error)
	UpdateBalanceFunc              func(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, status domain.InvoiceStatus, updatedAt time.Time) error
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

func (m *MockInvoiceRepository) Seed(invoice *domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = invoice
}

func (m *MockInvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, invoice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[invoice.ID]; ok {
		return domain.ErrDuplicateInvoice
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) Exists(ctx context.Context, tx usecase.Transaction, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.invoices[id]
	return ok, nil
}

func (m *MockInvoiceRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Invoice, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var invoices []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.AccountID == accountID {
			invoices = append(invoices, inv)
		}
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.After(invoices[j].Date) })
	if offset >= len(invoices) {
		return nil, nil
	}
	end := offset + limit
	if end > len(invoices) {
		end = len(invoices)
	}
	return invoices[offset:end], nil
}

func (m *MockInvoiceRepository) ListOpenByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error) {
	if m.ListOpenByAccountFunc != nil {
		return m.ListOpenByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var invoices []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.AccountID == accountID && inv.Status == domain.InvoiceStatusOpen {
			invoices = append(invoices, inv)
		}
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.Before(invoices[j].Date) })
	return invoices, nil
}

func (m *MockInvoiceRepository) ListOpenByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Invoice, error) {
	if m.ListOpenByAccountForUpdateFunc != nil {
		return m.ListOpenByAccountForUpdateFunc(ctx, tx, accountID)
	}
	return m.ListOpenByAccount(ctx, accountID)
}

func (m *MockInvoiceRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, status domain.InvoiceStatus, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	inv.BalanceDue = balance
	inv.Status = status
	return nil
}

// MockReceivableRepository is a mock implementation of ReceivableRepository.
type MockReceivableRepository struct {
	mu          sync.RWMutex
	receivables map[string]*domain.Receivable

	GetByAccountFunc          func(ctx context.Context, accountID string) (*domain.Receivable, error)
	GetByAccountForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Receivable, error)
	UpsertFunc                func(ctx context.Context, tx usecase.Transaction, receivable *domain.Receivable) error
	DeleteFunc                func(ctx context.Context, tx usecase.Transaction, accountID string) error
	ListFunc                  func(ctx context.Context, limit, offset int) ([]*domain.Receivable, error)
}

func NewMockReceivableRepository() *MockReceivableRepository {
	return &MockReceivableRepository{
		receivables: make(map[string]*domain.Receivable),
	}
}

func (m *MockReceivableRepository) Seed(r *domain.Receivable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receivables[r.AccountID] = r
}

func (m *MockReceivableRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Receivable, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.receivables[accountID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrReceivableNotFound
}

func (m *MockReceivableRepository) GetByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Receivable, error) {
	if m.GetByAccountForUpdateFunc != nil {
		return m.GetByAccountForUpdateFunc(ctx, tx, accountID)
	}
	return m.GetByAccount(ctx, accountID)
}

func (m *MockReceivableRepository) Upsert(ctx context.Context, tx usecase.Transaction, receivable *domain.Receivable) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, receivable)
	}
	m.Seed(receivable)
	return nil
}

func (m *MockReceivableRepository) Delete(ctx context.Context, tx usecase.Transaction, accountID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.receivables, accountID)
	return nil
}

func (m *MockReceivableRepository) List(ctx context.Context, limit, offset int) ([]*domain.Receivable, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	receivables := make([]*domain.Receivable, 0, len(m.receivables))
	for _, r := range m.receivables {
		receivables = append(receivables, r)
	}
	sort.Slice(receivables, func(i, j int) bool { return receivables[i].AccountID < receivables[j].AccountID })
	if offset >= len(receivables) {
		return nil, nil
	}
	end := offset + limit
	if end > len(receivables) {
		end = len(receivables)
	}
	return receivables[offset:end], nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu      sync.RWMutex
	values  map[string]string
	Deleted []string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}
