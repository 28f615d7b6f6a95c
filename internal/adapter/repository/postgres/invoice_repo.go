package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
//
// Line items and their computed breakdowns are stored as JSONB
// documents; the engine never queries inside a line, only whole
// invoices. The monetary totals are NUMERIC columns so consistency
// checks can run in SQL.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, account_id, date, payment_method, currency, items, lines,
	subtotal, tax_total, cess_total, grand_total, amount_paid, balance_due, status, created_at`

// moneyDoc is the JSONB form of a monetary amount. The amount is a
// decimal string; float64 would corrupt it.
type moneyDoc struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type discountDoc struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type cessDoc struct {
	Kind          string `json:"kind"`
	RatePercent   string `json:"rate_percent"`
	AmountPerUnit string `json:"amount_per_unit"`
}

type itemDoc struct {
	ProductID      string       `json:"product_id"`
	Quantity       int64        `json:"quantity"`
	UnitPrice      moneyDoc     `json:"unit_price"`
	Discount       *discountDoc `json:"discount,omitempty"`
	TaxRatePercent string       `json:"tax_rate_percent"`
	Cess           cessDoc      `json:"cess"`
}

type lineDoc struct {
	GrossAmount    moneyDoc `json:"gross_amount"`
	DiscountedBase moneyDoc `json:"discounted_base"`
	TaxAmount      moneyDoc `json:"tax_amount"`
	CessAmount     moneyDoc `json:"cess_amount"`
	LineTotal      moneyDoc `json:"line_total"`
}

// Create inserts a posted invoice within a transaction.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	pgxTx := tx.(*Tx).PgxTx()

	items, err := json.Marshal(itemsToDocs(invoice.Items))
	if err != nil {
		return err
	}
	lines, err := json.Marshal(linesToDocs(invoice.Lines))
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		invoice.ID,
		invoice.AccountID,
		timeToPgTimestamptz(invoice.Date),
		string(invoice.PaymentMethod),
		invoice.Totals.GrandTotal.Currency,
		items,
		lines,
		moneyToNumeric(invoice.Totals.Subtotal),
		moneyToNumeric(invoice.Totals.TaxTotal),
		moneyToNumeric(invoice.Totals.CessTotal),
		moneyToNumeric(invoice.Totals.GrandTotal),
		moneyToNumeric(invoice.AmountPaid),
		moneyToNumeric(invoice.BalanceDue),
		string(invoice.Status),
		timeToPgTimestamptz(invoice.CreatedAt),
	)

	return err
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)

	return scanInvoice(row)
}

// Exists reports whether an invoice ID was already posted.
func (r *InvoiceRepository) Exists(ctx context.Context, tx usecase.Transaction, id string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var exists bool
	err := pgxTx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists)

	return exists, err
}

// ListByAccount lists an account's invoices, newest first.
func (r *InvoiceRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE account_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3`, accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// ListOpenByAccount lists the account's invoices that still carry a
// balance, oldest first.
func (r *InvoiceRepository) ListOpenByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, openInvoicesSQL, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

const openInvoicesSQL = `
	SELECT ` + invoiceColumns + ` FROM invoices
	WHERE account_id = $1 AND status = 'open'
	ORDER BY date ASC, id ASC`

// ListOpenByAccountForUpdate is ListOpenByAccount with row locks, for
// payment allocation inside a posting transaction.
func (r *InvoiceRepository) ListOpenByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Invoice, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, openInvoicesSQL+` FOR UPDATE`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// UpdateBalance updates an invoice's outstanding balance and status
// after a payment allocation.
func (r *InvoiceRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, status domain.InvoiceStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE invoices SET balance_due = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id,
		moneyToNumeric(balance),
		string(status),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

func collectInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var (
		invoice       domain.Invoice
		date          pgtype.Timestamptz
		paymentMethod string
		currency      string
		itemsJSON     []byte
		linesJSON     []byte
		subtotal      pgtype.Numeric
		taxTotal      pgtype.Numeric
		cessTotal     pgtype.Numeric
		grandTotal    pgtype.Numeric
		amountPaid    pgtype.Numeric
		balanceDue    pgtype.Numeric
		status        string
		createdAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&invoice.ID,
		&invoice.AccountID,
		&date,
		&paymentMethod,
		&currency,
		&itemsJSON,
		&linesJSON,
		&subtotal,
		&taxTotal,
		&cessTotal,
		&grandTotal,
		&amountPaid,
		&balanceDue,
		&status,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}

		return nil, err
	}

	var itemDocs []itemDoc
	if err := json.Unmarshal(itemsJSON, &itemDocs); err != nil {
		return nil, err
	}
	var lineDocs []lineDoc
	if err := json.Unmarshal(linesJSON, &lineDocs); err != nil {
		return nil, err
	}

	items, err := docsToItems(itemDocs, currency)
	if err != nil {
		return nil, err
	}
	lines, err := docsToLines(lineDocs)
	if err != nil {
		return nil, err
	}

	invoice.Date = date.Time
	invoice.PaymentMethod = domain.PaymentMethod(paymentMethod)
	invoice.Items = items
	invoice.Lines = lines
	invoice.Totals = domain.InvoiceTotals{
		Subtotal:   numericToMoney(subtotal, currency),
		TaxTotal:   numericToMoney(taxTotal, currency),
		CessTotal:  numericToMoney(cessTotal, currency),
		GrandTotal: numericToMoney(grandTotal, currency),
	}
	invoice.AmountPaid = numericToMoney(amountPaid, currency)
	invoice.BalanceDue = numericToMoney(balanceDue, currency)
	invoice.Status = domain.InvoiceStatus(status)
	invoice.CreatedAt = createdAt.Time

	return &invoice, nil
}

func moneyToDoc(m domain.Money) moneyDoc {
	return moneyDoc{Amount: m.Amount.String(), Currency: m.Currency}
}

func docToMoney(d moneyDoc) (domain.Money, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.Money{Amount: amount, Currency: d.Currency}, nil
}

func itemsToDocs(items []domain.LineItem) []itemDoc {
	docs := make([]itemDoc, 0, len(items))
	for _, item := range items {
		doc := itemDoc{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      moneyToDoc(item.UnitPrice),
			TaxRatePercent: item.TaxRatePercent.String(),
			Cess: cessDoc{
				Kind:          string(item.Cess.Kind),
				RatePercent:   item.Cess.RatePercent.String(),
				AmountPerUnit: item.Cess.AmountPerUnit.String(),
			},
		}
		if item.Discount != nil {
			doc.Discount = &discountDoc{
				Type:  string(item.Discount.Type),
				Value: item.Discount.Value.String(),
			}
		}
		docs = append(docs, doc)
	}

	return docs
}

func docsToItems(docs []itemDoc, currency string) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(docs))
	for _, doc := range docs {
		unitPrice, err := docToMoney(doc.UnitPrice)
		if err != nil {
			return nil, err
		}
		if unitPrice.Currency == "" {
			unitPrice.Currency = currency
		}
		taxRate, err := decimal.NewFromString(doc.TaxRatePercent)
		if err != nil {
			return nil, err
		}
		ratePercent, err := decimal.NewFromString(doc.Cess.RatePercent)
		if err != nil {
			return nil, err
		}
		amountPerUnit, err := decimal.NewFromString(doc.Cess.AmountPerUnit)
		if err != nil {
			return nil, err
		}

		item := domain.LineItem{
			ProductID:      doc.ProductID,
			Quantity:       doc.Quantity,
			UnitPrice:      unitPrice,
			TaxRatePercent: taxRate,
			Cess: domain.CessSpec{
				Kind:          domain.CessKind(doc.Cess.Kind),
				RatePercent:   ratePercent,
				AmountPerUnit: amountPerUnit,
			},
		}
		if doc.Discount != nil {
			value, err := decimal.NewFromString(doc.Discount.Value)
			if err != nil {
				return nil, err
			}
			item.Discount = &domain.Discount{
				Type:  domain.DiscountType(doc.Discount.Type),
				Value: value,
			}
		}
		items = append(items, item)
	}

	return items, nil
}

func linesToDocs(lines []domain.LineComputation) []lineDoc {
	docs := make([]lineDoc, 0, len(lines))
	for _, lc := range lines {
		docs = append(docs, lineDoc{
			GrossAmount:    moneyToDoc(lc.GrossAmount),
			DiscountedBase: moneyToDoc(lc.DiscountedBase),
			TaxAmount:      moneyToDoc(lc.TaxAmount),
			CessAmount:     moneyToDoc(lc.CessAmount),
			LineTotal:      moneyToDoc(lc.LineTotal),
		})
	}

	return docs
}

func docsToLines(docs []lineDoc) ([]domain.LineComputation, error) {
	lines := make([]domain.LineComputation, 0, len(docs))
	for _, doc := range docs {
		gross, err := docToMoney(doc.GrossAmount)
		if err != nil {
			return nil, err
		}
		base, err := docToMoney(doc.DiscountedBase)
		if err != nil {
			return nil, err
		}
		tax, err := docToMoney(doc.TaxAmount)
		if err != nil {
			return nil, err
		}
		cess, err := docToMoney(doc.CessAmount)
		if err != nil {
			return nil, err
		}
		total, err := docToMoney(doc.LineTotal)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.LineComputation{
			GrossAmount:    gross,
			DiscountedBase: base,
			TaxAmount:      tax,
			CessAmount:     cess,
			LineTotal:      total,
		})
	}

	return lines, nil
}
