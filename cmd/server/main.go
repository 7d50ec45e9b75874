package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"usersearch/internal/app"
	jwttoken "usersearch/internal/jwt_token"
	"usersearch/internal/platform/config"
	"usersearch/internal/platform/httpserver"
	"usersearch/internal/platform/logger"
	"usersearch/internal/platform/metrics"
	"usersearch/internal/search/handler"
	httptransport "usersearch/internal/transport/http"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := app.OpenBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Warn("failed to close backends", "error", err)
		}
	}()

	a, err := app.New(cfg, backends, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to flush audit events", "error", err)
		}
	}()

	deps := httptransport.Deps{
		Search:    handler.New(a.Service, log, cfg.Search.MaxResultsPerPage),
		Validator: jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)),
		Limiter:   app.NewRateLimiter(cfg.RateLimit, backends, log, prometheus.DefaultRegisterer),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Logger:    log,
	}
	if backends.Redis != nil {
		deps.Health = backends.Redis
	}

	srv := httpserver.New(cfg.Server, httptransport.NewRouter(deps))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting usersearch", "addr", cfg.Server.Addr, "identity_backend", cfg.Identity.Backend)
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
