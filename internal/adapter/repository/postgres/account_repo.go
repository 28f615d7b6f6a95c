package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, name, kind, currency, total_orders, completed_orders,
	total_value, average_order_value, last_order_date, version, created_at, updated_at`

const insertAccountSQL = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create creates a new account outside any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.create(ctx, r.pool, account)
}

// CreateTx creates a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.create(ctx, tx.(*Tx).PgxTx(), account)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *AccountRepository) create(ctx context.Context, db execer, account *domain.Account) error {
	_, err := db.Exec(ctx, insertAccountSQL,
		account.ID,
		account.Name,
		string(account.Kind),
		account.Currency,
		account.TotalOrders,
		account.CompletedOrders,
		moneyToNumeric(account.TotalValue),
		moneyToNumeric(account.AverageOrderValue),
		timePtrToPgTimestamptz(account.LastOrderDate),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
// This is the per-account write lock; every posting path takes it first.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()
	row := pgxTx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)

	return scanAccount(row)
}

// Update persists the account aggregates within a transaction.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE accounts
		SET name = $2, total_orders = $3, completed_orders = $4, total_value = $5,
		    average_order_value = $6, last_order_date = $7, version = $8, updated_at = $9
		WHERE id = $1`,
		account.ID,
		account.Name,
		account.TotalOrders,
		account.CompletedOrders,
		moneyToNumeric(account.TotalValue),
		moneyToNumeric(account.AverageOrderValue),
		timePtrToPgTimestamptz(account.LastOrderDate),
		account.Version,
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts with pagination, newest first.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account       domain.Account
		kind          string
		totalValue    pgtype.Numeric
		avgOrderValue pgtype.Numeric
		lastOrderDate pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&kind,
		&account.Currency,
		&account.TotalOrders,
		&account.CompletedOrders,
		&totalValue,
		&avgOrderValue,
		&lastOrderDate,
		&account.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Kind = domain.AccountKind(kind)
	account.TotalValue = numericToMoney(totalValue, account.Currency)
	account.AverageOrderValue = numericToMoney(avgOrderValue, account.Currency)
	if lastOrderDate.Valid {
		t := lastOrderDate.Time
		account.LastOrderDate = &t
	}
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}
