package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running postings from blocking account rows
	DefaultTransactionTimeout = 10 * time.Second

	// MaxInvoiceAmount is the maximum grand total allowed for a single invoice (in decimal string)
	MaxInvoiceAmount = "1000000000" // 1 billion

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountSummaryCacheTTL is how long cached account summaries stay
	// valid. Postings invalidate the key explicitly; the TTL is a
	// backstop.
	AccountSummaryCacheTTL = 30 * time.Second
)
