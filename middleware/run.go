// Package middleware assembles and runs the HTTP service.
package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/harish876/ResLens-Middleware/internal/api"
	"github.com/harish876/ResLens-Middleware/internal/config"
	"github.com/harish876/ResLens-Middleware/internal/gemini"
	"github.com/harish876/ResLens-Middleware/internal/health"
	"github.com/harish876/ResLens-Middleware/internal/kvtool"
	"github.com/harish876/ResLens-Middleware/internal/logger"
	"github.com/harish876/ResLens-Middleware/internal/runner"
)

// Run starts the middleware HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New(api.ServiceName)

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("kv_tool_path", cfg.KVToolPath).
		Bool("gemini_enabled", cfg.GeminiAPIKey != "").
		Msg("Middleware starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv := kvtool.New(cfg.KVToolPath, cfg.KVConfigPath, log)
	run := runner.New(kv, log)

	var gem *gemini.Client
	if cfg.GeminiAPIKey != "" {
		gem = gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, log)
	} else {
		log.Warn().Msg("No Gemini API key configured; /analyze is disabled")
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, kv, gem)

	router := api.NewRouter(run, gem, svcHealth.Components)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute, // /analyze waits on the AI endpoint
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// startHealthCheckers launches the per-dependency probes and the aggregate.
// The probes are informational: the service starts even when the kv tool or
// the AI endpoint is unavailable.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, kv *kvtool.Client, gem *gemini.Client) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker

	kvChecker := health.NewPingChecker("kv-tool", kv, probeTimeout, log)
	go kvChecker.Start(ctx, interval)
	checkers = append(checkers, kvChecker)

	if gem != nil {
		gemChecker := health.NewPingChecker("gemini", gem, probeTimeout, log)
		go gemChecker.Start(ctx, interval)
		checkers = append(checkers, gemChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}
