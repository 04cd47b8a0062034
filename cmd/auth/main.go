package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquapulse/internal/app"
	"aquapulse/internal/config"
	"aquapulse/internal/janitor"
	"aquapulse/internal/observability/logging"
	"aquapulse/internal/observability/metrics"
	httpx "aquapulse/internal/transport/http"
)

func main() {
	cfg, err := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "auth",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting service")
	metrics.MustRegister("auth")

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing adapters", "error", err)
		}
	}()

	if err := a.Store.AutoMigrate(ctx); err != nil {
		return err
	}

	j := janitor.New(a.Auth, logger)
	if err := j.Schedule(cfg.JanitorSchedule); err != nil {
		return err
	}
	j.Start()

	h := httpx.NewHandler(a.Auth, a.Tokens, httpx.CookieConfig{
		AccessTTL:  cfg.AccessCookieTTL,
		RefreshTTL: cfg.RefreshCookieTTL,
		Secure:     cfg.CookieSecure,
		Domain:     cfg.CookieDomain,
	})
	router := httpx.NewRouter(h, a.Authn, httpx.Options{
		CORSOrigins:    cfg.CORSOrigins,
		TrustProxy:     cfg.TrustProxy,
		LoginRateLimit: cfg.LoginRateLimit,
		Ready:          a.Store.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	j.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
