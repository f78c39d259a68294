package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appamqp "chitieu/internal/amqp"
	"chitieu/internal/config"
	"chitieu/internal/export"
	"chitieu/internal/export/google"
	"chitieu/internal/export/memory"
	"chitieu/internal/log"
	"chitieu/internal/storage"
	"chitieu/internal/worker"
)

func main() {
	// Load .env for local development; production uses real env vars.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reports go to Google Sheets when configured, otherwise to an in-memory
	// writer so the pipeline stays exercisable in development.
	var writer export.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = memory.NewWriter()
		logger.Info("no GOOGLE_SPREADSHEET_ID provided, using in-memory report writer")
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportWorker := worker.NewReportWorker(repo, writer, cfg.ReportDebounce, logger)

	// Export once on startup so the report reflects changes made while the
	// worker was down.
	if err := reportWorker.Export(ctx); err != nil {
		logger.Error("startup export failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reportWorker.Run(ctx)
	})

	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(ctx, reportWorker.HandleLedgerEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
