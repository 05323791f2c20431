package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"vendas/internal/amqp"
	"vendas/internal/config"
	"vendas/internal/log"
	"vendas/internal/metrics"
	"vendas/internal/pipeline"
	gsheet "vendas/internal/sheets/google"
	"vendas/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: "vendas-etl"})
	log.SetDefault(logger)

	logger.Info("Starting vendas-etl")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize run store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	p := pipeline.New(cfg, logger.WithComponent("pipeline"), metrics.NewRegistry()).
		WithStore(repo)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		p = p.WithNotifier(amqpClient)
		logger.Info("AMQP notifications enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	if cfg.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		p = p.WithExporter(exporter)
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Run finished",
		"run_id", result.RunID,
		"fact_rows", result.Summary.Metadata.FactRows,
		"total_orders", result.Summary.KPIs.TotalOrders,
		"total_revenue", result.Summary.KPIs.TotalRevenue.String(),
		"output", cfg.OutputPath,
		"duration", result.Duration)
}
