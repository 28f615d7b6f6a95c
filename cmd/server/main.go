package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bizledger/internal/adapter/http"
	"github.com/iho/bizledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/bizledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bizledger/internal/adapter/repository/redis"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/config"
	"github.com/iho/bizledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bizledger/internal/infrastructure/logger"
	"github.com/iho/bizledger/internal/infrastructure/logging"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
	"github.com/iho/bizledger/internal/infrastructure/postgres"
	"github.com/iho/bizledger/internal/infrastructure/redis"
	"github.com/iho/bizledger/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	receivableRepo := postgresRepo.NewReceivableRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	agingPolicy := domain.AgingPolicy{
		CurrentWindowDays: cfg.AgingCurrentWindowDays,
		MidWindowDays:     cfg.AgingMidWindowDays,
		CriticalAfterDays: cfg.AgingCriticalAfterDays,
	}

	// Initialize use cases
	pricingUC := usecase.NewPricingUseCase()
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, invoiceRepo, receivableRepo, outboxRepo, idGen, cache, retrier, agingPolicy)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, invoiceRepo, receivableRepo, outboxRepo, idGen, cache, agingPolicy)
	agingUC := usecase.NewAgingUseCase(accountRepo, invoiceRepo, agingPolicy)
	bookUC := usecase.NewBookUseCase(accountRepo, invoiceRepo, receivableRepo)

	// Initialize handlers
	invoiceHandler := handler.NewInvoiceHandler(pricingUC, ledgerUC)
	accountHandler := handler.NewAccountHandler(accountUC, ledgerUC, agingUC)
	bookHandler := handler.NewBookHandler(bookUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	httpLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		InvoiceHandler:   invoiceHandler,
		AccountHandler:   accountHandler,
		BookHandler:      bookHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           httpLogger,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisStreamPublisher(redisClient, ""),
		Logger:     slogger.Logger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
