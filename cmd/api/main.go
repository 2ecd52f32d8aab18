package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Madofly35/GestLoc/internal/app"
	"github.com/Madofly35/GestLoc/internal/config"
	"github.com/Madofly35/GestLoc/internal/database"
	gestlocHttp "github.com/Madofly35/GestLoc/internal/http"
	documentHandler "github.com/Madofly35/GestLoc/internal/http/document"
	leaseHandler "github.com/Madofly35/GestLoc/internal/http/lease"
	paymentHandler "github.com/Madofly35/GestLoc/internal/http/payment"
	propertyHandler "github.com/Madofly35/GestLoc/internal/http/property"
	receiptHandler "github.com/Madofly35/GestLoc/internal/http/receipt"
	storageHandler "github.com/Madofly35/GestLoc/internal/http/storage"
	tenantHandler "github.com/Madofly35/GestLoc/internal/http/tenant"
	verifyHandler "github.com/Madofly35/GestLoc/internal/http/verify"
	"github.com/Madofly35/GestLoc/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Production() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(cfg.ConnectionString()); err != nil {
			return err
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	handlers := gestlocHttp.Handlers{
		Properties: propertyHandler.NewHandler(a.Properties),
		Tenants:    tenantHandler.NewHandler(a.Tenants, a.Payments),
		Leases:     leaseHandler.NewHandler(a.Leases),
		Payments:   paymentHandler.NewHandler(a.Payments),
		Receipts:   receiptHandler.NewHandler(a.Receipts),
		Verify:     verifyHandler.NewHandler(a.Verification),
		Documents:  documentHandler.NewHandler(a.Documents),
	}

	if a.FS != nil {
		handlers.Storage = storageHandler.NewHandler(a.FS)
	}

	router := gestlocHttp.New(gestlocHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		Timeout:        cfg.Server.Timeout,
		Gatherer:       reg,
	}, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.App.Env, "storage", cfg.Storage.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
