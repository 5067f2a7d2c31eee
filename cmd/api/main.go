package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loyalty-ledger/config"
	natsBus "loyalty-ledger/internal/adapter/bus/nats"
	httpHandler "loyalty-ledger/internal/adapter/http/handler"
	pgStorage "loyalty-ledger/internal/adapter/storage/postgres"
	redisStorage "loyalty-ledger/internal/adapter/storage/redis"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/internal/service"
	"loyalty-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Loyalty Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize NATS publisher
	publisher, err := natsBus.NewPublisher(cfg.NATS, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer publisher.Close()
	log.Info().Msg("NATS connected")

	// Initialize repositories
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	redemptionRepo := pgStorage.NewRedemptionRepo(pool)
	outboxRepo := pgStorage.NewOutboxRepo(pool)
	customerRepo := pgStorage.NewCustomerRepo(pool)
	deviceRepo := pgStorage.NewDeviceRepo(pool)
	rewardRepo := pgStorage.NewRewardRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	signalStore := redisStorage.NewSignalStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(ledgerRepo, log)
	outboxSvc := service.NewOutboxService(outboxRepo)
	auditSvc := service.NewAuditService(auditRepo, log)
	fraudSvc := service.NewFraudSignalService(signalStore, log)
	txnSvc := service.NewTransactionService(
		txRepo,
		redemptionRepo,
		customerRepo,
		deviceRepo,
		rewardRepo,
		ledgerSvc,
		outboxSvc,
		fraudSvc,
		idempotencyCache,
		transactor,
		log,
	)
	operatorSvc := service.NewOperatorService(
		txRepo,
		customerRepo,
		ledgerSvc,
		outboxSvc,
		auditSvc,
		transactor,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthChecker(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	natsHealth := natsBus.NewHealthCheck(publisher)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TransactionSvc: txnSvc,
		LedgerSvc:      ledgerSvc,
		OperatorSvc:    operatorSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, natsHealth},
		Logger:         log,
	})

	// Start the outbox dispatcher next to the HTTP server. It owns the
	// PENDING -> PUBLISHED/FAILED lifecycle of committed events.
	dispatcher := service.NewOutboxDispatcher(outboxRepo, publisher, cfg.Outbox, log)
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	go dispatcher.Run(dispatcherCtx)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopDispatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
