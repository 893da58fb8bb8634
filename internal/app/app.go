package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightledger/payments-core/internal/api"
	"github.com/brightledger/payments-core/internal/config"
	"github.com/brightledger/payments-core/internal/db"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/brightledger/payments-core/internal/service"
	"github.com/brightledger/payments-core/internal/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run bootstraps the HTTP server and webhook delivery worker, blocking
// until a shutdown signal arrives or the server fails.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting payments-core")

	pool, err := db.Connect()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	repo := repository.NewRepository(pool)

	auditSvc := service.NewAuditService(repo, logger)
	accountSvc := service.NewAccountService(repo)
	apiKeySvc := service.NewApiKeyService(repo, auditSvc)
	webhookSvc := service.NewWebhookService(repo, logger, auditSvc)
	txnSvc := service.NewTransactionService(repo, webhookSvc)

	webhookWorker := worker.NewWebhookWorker(repo, webhookSvc, logger).WithPollInterval(cfg.WebhookPollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopWorker := webhookWorker.Run(ctx)
	logger.Info("webhook worker started")

	router := api.NewRouter(cfg, logger, pool, repo, accountSvc, txnSvc, apiKeySvc, webhookSvc)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping webhook worker")
	stopWorker()

	logger.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}
