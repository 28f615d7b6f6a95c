package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bizledger/internal/adapter/repository/postgres"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ledgerStack bundles the repositories and use cases wired against a
// live database, the way the server wires them minus Redis.
type ledgerStack struct {
	accountRepo    *postgres.AccountRepository
	invoiceRepo    *postgres.InvoiceRepository
	receivableRepo *postgres.ReceivableRepository
	outboxRepo     *postgres.OutboxRepository

	pricingUC *usecase.PricingUseCase
	ledgerUC  *usecase.LedgerUseCase
	accountUC *usecase.AccountUseCase
	agingUC   *usecase.AgingUseCase
	bookUC    *usecase.BookUseCase
}

func newLedgerStack(pool *pgxpool.Pool) *ledgerStack {
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	receivableRepo := postgres.NewReceivableRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()
	policy := domain.DefaultAgingPolicy()

	return &ledgerStack{
		accountRepo:    accountRepo,
		invoiceRepo:    invoiceRepo,
		receivableRepo: receivableRepo,
		outboxRepo:     outboxRepo,

		pricingUC: usecase.NewPricingUseCase(),
		ledgerUC:  usecase.NewLedgerUseCase(txManager, accountRepo, invoiceRepo, receivableRepo, outboxRepo, idGen, nil, retrier, policy),
		accountUC: usecase.NewAccountUseCase(txManager, accountRepo, invoiceRepo, receivableRepo, outboxRepo, idGen, nil, policy),
		agingUC:   usecase.NewAgingUseCase(accountRepo, invoiceRepo, policy),
		bookUC:    usecase.NewBookUseCase(accountRepo, invoiceRepo, receivableRepo),
	}
}
