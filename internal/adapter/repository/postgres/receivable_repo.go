package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ReceivableRepository implements usecase.ReceivableRepository.
// One row per account, keyed by account_id; the row is deleted when the
// account settles in full.
type ReceivableRepository struct {
	pool *pgxpool.Pool
}

// NewReceivableRepository creates a new ReceivableRepository.
func NewReceivableRepository(pool *pgxpool.Pool) *ReceivableRepository {
	return &ReceivableRepository{pool: pool}
}

const receivableColumns = `account_id, currency, total_receivable, overdue_amount,
	invoice_count, oldest_invoice_date, days_past_due, status, updated_at`

// GetByAccount retrieves the receivable for an account.
func (r *ReceivableRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Receivable, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE account_id = $1`, accountID)

	return scanReceivable(row)
}

// GetByAccountForUpdate retrieves the receivable with a FOR UPDATE lock.
func (r *ReceivableRepository) GetByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Receivable, error) {
	pgxTx := tx.(*Tx).PgxTx()
	row := pgxTx.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE account_id = $1 FOR UPDATE`, accountID)

	return scanReceivable(row)
}

// Upsert inserts or replaces the account's receivable row.
func (r *ReceivableRepository) Upsert(ctx context.Context, tx usecase.Transaction, receivable *domain.Receivable) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO receivables (`+receivableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id) DO UPDATE SET
			total_receivable = EXCLUDED.total_receivable,
			overdue_amount = EXCLUDED.overdue_amount,
			invoice_count = EXCLUDED.invoice_count,
			oldest_invoice_date = EXCLUDED.oldest_invoice_date,
			days_past_due = EXCLUDED.days_past_due,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		receivable.AccountID,
		receivable.TotalReceivable.Currency,
		moneyToNumeric(receivable.TotalReceivable),
		moneyToNumeric(receivable.OverdueAmount),
		receivable.InvoiceCount,
		timeToPgTimestamptz(receivable.OldestInvoiceDate),
		int32(receivable.DaysPastDue),
		string(receivable.Status),
		timeToPgTimestamptz(receivable.UpdatedAt),
	)

	return err
}

// Delete removes the account's receivable row once settled.
func (r *ReceivableRepository) Delete(ctx context.Context, tx usecase.Transaction, accountID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `DELETE FROM receivables WHERE account_id = $1`, accountID)

	return err
}

// List lists outstanding receivables, largest balance first.
func (r *ReceivableRepository) List(ctx context.Context, limit, offset int) ([]*domain.Receivable, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+receivableColumns+` FROM receivables
		ORDER BY total_receivable DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receivables := make([]*domain.Receivable, 0)
	for rows.Next() {
		receivable, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, receivable)
	}

	return receivables, rows.Err()
}

func scanReceivable(row rowScanner) (*domain.Receivable, error) {
	var (
		receivable        domain.Receivable
		currency          string
		totalReceivable   pgtype.Numeric
		overdueAmount     pgtype.Numeric
		daysPastDue       int32
		oldestInvoiceDate pgtype.Timestamptz
		status            string
		updatedAt         pgtype.Timestamptz
	)

	err := row.Scan(
		&receivable.AccountID,
		&currency,
		&totalReceivable,
		&overdueAmount,
		&receivable.InvoiceCount,
		&oldestInvoiceDate,
		&daysPastDue,
		&status,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceivableNotFound
		}

		return nil, err
	}

	receivable.TotalReceivable = numericToMoney(totalReceivable, currency)
	receivable.OverdueAmount = numericToMoney(overdueAmount, currency)
	receivable.OldestInvoiceDate = oldestInvoiceDate.Time
	receivable.DaysPastDue = int(daysPastDue)
	receivable.Status = domain.AgingStatus(status)
	receivable.UpdatedAt = updatedAt.Time

	return &receivable, nil
}
