// Command server runs the coffee payment backend HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	eventapp "github.com/kahawa/backend/internal/application/event"
	financeapp "github.com/kahawa/backend/internal/application/finance"
	gradingapp "github.com/kahawa/backend/internal/application/grading"
	procurementapp "github.com/kahawa/backend/internal/application/procurement"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/infrastructure/cache"
	"github.com/kahawa/backend/internal/infrastructure/config"
	"github.com/kahawa/backend/internal/infrastructure/event"
	"github.com/kahawa/backend/internal/infrastructure/logger"
	"github.com/kahawa/backend/internal/infrastructure/notification"
	"github.com/kahawa/backend/internal/infrastructure/persistence"
	"github.com/kahawa/backend/internal/infrastructure/telemetry"
	"github.com/kahawa/backend/internal/interfaces/http/handler"
	"github.com/kahawa/backend/internal/interfaces/http/middleware"
	"github.com/kahawa/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiler.Enabled,
		ServerAddress:   cfg.Profiler.ServerAddress,
		ApplicationName: cfg.Profiler.ApplicationName,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	// Production schemas are managed by cmd/migrate.
	if cfg.App.Env != "production" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return fmt.Errorf("failed to auto-migrate schema: %w", err)
		}
	}

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	batchRepo := persistence.NewGormCoffeeBatchRepository(db.DB)
	assessmentRepo := persistence.NewGormQualityAssessmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	cashTxRepo := persistence.NewGormCashTransactionRepository(db.DB)
	balanceRepo := persistence.NewGormCashBalanceRepository(db.DB)
	advanceRepo := persistence.NewGormSupplierAdvanceRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRequestRepository(db.DB)
	daybookRepo := persistence.NewGormDaybookRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Event plumbing
	eventBus := event.NewInMemoryEventBus(log)
	serializer := event.NewEventSerializer()

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		return fmt.Errorf("failed to create idempotency store: %w", err)
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("Failed to close idempotency store", zap.Error(err))
		}
	}()

	var notifier notification.Notifier
	if cfg.Notification.Enabled {
		notifier = notification.NewHTTPGateway(notification.HTTPGatewayConfig{
			BaseURL: cfg.Notification.BaseURL,
			APIKey:  cfg.Notification.APIKey,
			Sender:  cfg.Notification.Sender,
			Timeout: cfg.Notification.Timeout,
		}, log)
	} else {
		notifier = notification.NewNoopNotifier(log)
	}

	paymentCompletedHandler := financeapp.NewPaymentCompletedHandler(supplierRepo, notifier, idempotencyStore, log)
	eventBus.Subscribe(paymentCompletedHandler)

	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Warn("Failed to stop event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  1 * time.Hour,
		}, log)
		if err := processor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start outbox processor: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := processor.Stop(stopCtx); err != nil {
				log.Warn("Failed to stop outbox processor", zap.Error(err))
			}
		}()
	}

	// Application services
	intakeService := procurementapp.NewIntakeService(batchRepo, assessmentRepo, supplierRepo, txManager, eventBus, log)
	supplierService := procurementapp.NewSupplierService(supplierRepo, log)
	pricingService := gradingapp.NewPricingApprovalService(assessmentRepo, batchRepo, approvalRepo, txManager, eventBus, log)
	paymentService := financeapp.NewPaymentService(
		assessmentRepo, batchRepo, paymentRepo, cashTxRepo, balanceRepo,
		advanceRepo, approvalRepo, daybookRepo, outboxRepo,
		finance.NewAdvanceRecoveryService(), txManager, log,
	)
	cashService := financeapp.NewCashBalanceService(balanceRepo, cashTxRepo, daybookRepo, txManager, log)
	advanceService := financeapp.NewAdvanceService(advanceRepo, supplierRepo, balanceRepo, cashTxRepo, txManager, log)
	approvalService := financeapp.NewApprovalService(approvalRepo, txManager, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		}),
	)

	router.NewRouter(engine).Register(
		handler.NewSupplierHandler(supplierService),
		handler.NewIntakeHandler(intakeService),
		handler.NewPricingHandler(pricingService),
		handler.NewPaymentHandler(paymentService),
		handler.NewCashHandler(cashService),
		handler.NewAdvanceHandler(advanceService),
		handler.NewApprovalHandler(approvalService, paymentService),
		handler.NewOutboxHandler(outboxService),
	).Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
