package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hongminglow/credit-approval/internal/config"
	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/ingest"
	"github.com/hongminglow/credit-approval/internal/service"
	postgres "github.com/hongminglow/credit-approval/internal/storage/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	dir := flag.String("dir", cfg.DataDir, "directory holding "+ingest.CustomerFile+" and "+ingest.LoanFile)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewLendingStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	lending := service.NewLending(store, credit.NewEngine(), service.WithLogger(logger))
	rep, err := ingest.NewImporter(store, lending, logger).Run(ctx, *dir)
	if err != nil {
		logger.Error("import failed", "dir", *dir, "error", err)
		store.Close()
		os.Exit(1)
	}

	logger.Info("import complete",
		"customers", rep.CustomersLoaded,
		"loans", rep.LoansLoaded,
		"debts_updated", rep.DebtsUpdated,
		"skipped", len(rep.Skipped),
	)
}
