package usecase

import (
	"context"
	"time"

	"github.com/iho/bizledger/internal/domain"
)

// AccountRepository defines data access for trading accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// InvoiceRepository defines data access for posted invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	Exists(ctx context.Context, tx Transaction, id string) (bool, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Invoice, error)
	ListOpenByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error)
	ListOpenByAccountForUpdate(ctx context.Context, tx Transaction, accountID string) ([]*domain.Invoice, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance domain.Money, status domain.InvoiceStatus, updatedAt time.Time) error
}

// ReceivableRepository defines data access for per-account receivables.
type ReceivableRepository interface {
	GetByAccount(ctx context.Context, accountID string) (*domain.Receivable, error)
	GetByAccountForUpdate(ctx context.Context, tx Transaction, accountID string) (*domain.Receivable, error)
	Upsert(ctx context.Context, tx Transaction, receivable *domain.Receivable) error
	Delete(ctx context.Context, tx Transaction, accountID string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Receivable, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when the storage layer reports a
// transient conflict (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
