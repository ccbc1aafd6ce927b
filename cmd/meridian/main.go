package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-campus/meridian/internal/admissions"
	"github.com/meridian-campus/meridian/internal/app"
	"github.com/meridian-campus/meridian/internal/catalog"
	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/observability"
	"github.com/meridian-campus/meridian/internal/platform/cache"
	"github.com/meridian-campus/meridian/internal/platform/db"
	"github.com/meridian-campus/meridian/internal/reports"
	"github.com/meridian-campus/meridian/internal/shared"
	"github.com/meridian-campus/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, fee cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	catalogService := catalog.NewService(catalog.NewRepository(dbpool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	admissionsService := admissions.NewService(admissions.NewRepository(dbpool), auditLogger, logger)
	admissionsHandler := admissions.NewHandler(logger, admissionsService)

	var feeCache *ledger.FeeDetailsCache
	if redisClient != nil {
		feeCache = ledger.NewFeeDetailsCache(redisClient, cfg.FeeCacheTTL)
	}
	ledgerService := ledger.NewService(ledger.NewRepository(dbpool), feeCache, auditLogger, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, metrics)

	reportsService := reports.NewService(reports.NewRepository(dbpool))
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		CatalogHandler:    catalogHandler,
		AdmissionsHandler: admissionsHandler,
		LedgerHandler:     ledgerHandler,
		ReportsHandler:    reportsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
