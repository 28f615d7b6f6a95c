package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	InvoicesPosted  prometheus.Counter
	PaymentsPosted  prometheus.Counter
	PostingDuration prometheus.Histogram
	InvoiceAmount   prometheus.Histogram
	PaymentAmount   prometheus.Histogram
	PostingErrors   *prometheus.CounterVec

	// Account metrics
	AccountsCreated     prometheus.Counter
	ReceivablesSettled  prometheus.Counter
	ReceivableTotal     *prometheus.GaugeVec
	AccountOperations   *prometheus.CounterVec
	AgingStatusAccounts *prometheus.GaugeVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Posting metrics
		InvoicesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_invoices_posted_total",
			Help: "Total number of invoices posted",
		}),
		PaymentsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_payments_posted_total",
			Help: "Total number of payments posted",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		InvoiceAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizledger_invoice_amount",
			Help:    "Posted invoice grand totals",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizledger_payment_amount",
			Help:    "Posted payment amounts",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		ReceivablesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_receivables_settled_total",
			Help: "Total number of receivables settled in full",
		}),
		ReceivableTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bizledger_receivable_total",
				Help: "Current outstanding receivable per account",
			},
			[]string{"account_id", "currency"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),
		AgingStatusAccounts: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bizledger_aging_status_accounts",
				Help: "Number of accounts per aging status",
			},
			[]string{"status"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bizledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_outbox_errors_total",
			Help: "Total outbox publish errors",
		}),
	}
}
