package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"savings/internal/amqp"
	"savings/internal/cli"
	applog "savings/internal/log"
	gsheet "savings/internal/sheets/google"
	"savings/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	if err := cli.RequirePersistentBackend(cfg); err != nil {
		logger.Error("Unsupported backend for the worker", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	var mirror worker.Mirror
	if cfg.SheetsEnabled() {
		m, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		mirror = m
		logger.Info("Google Sheets mirror enabled", "sheet", cfg.GoogleSheetName)
	}

	syncWorker := worker.NewSyncWorker(res.Store, cfg.ExportPath, mirror)
	if err := syncWorker.Refresh(ctx); err != nil {
		logger.Warn("Initial refresh failed", applog.FieldError, err)
	}

	processor := worker.NewProcessor(syncWorker, cfg.SyncInterval)
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start processor", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			logger.Info("Consuming record events", "queue", cfg.AMQPQueue)
			return client.ConsumeWithRetry(gctx, syncWorker.HandleRecordEvent)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic refresh", "interval", cfg.SyncInterval)
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Worker error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
