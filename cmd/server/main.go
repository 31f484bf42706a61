package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hongminglow/credit-approval/internal/config"
	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/metrics"
	"github.com/hongminglow/credit-approval/internal/server"
	"github.com/hongminglow/credit-approval/internal/service"
	postgres "github.com/hongminglow/credit-approval/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	store, err := postgres.NewLendingStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	lending := service.NewLending(store, credit.NewEngine(),
		service.WithLogger(logger),
		service.WithMetrics(metrics.NewLending(registry)),
	)
	srv := server.New(cfg, server.Deps{
		Lending:  lending,
		Storage:  store,
		Gatherer: registry,
		Logger:   logger,
	})

	go func() {
		logger.Info("credit approval service listening", "addr", cfg.HTTPAddress(), "auth", cfg.AuthEnabled())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
}
