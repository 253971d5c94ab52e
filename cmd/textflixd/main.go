package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textflix/internal/config"
	"textflix/internal/logging"
	"textflix/internal/preflight"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}

	app, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.Paths.WebhookBind,
		Handler:           app.webhook.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("webhook server listening", logging.String("addr", cfg.Paths.WebhookBind))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("webhook server failed", logging.Error(err))
			cancel()
		}
	}()

	if app.monitor != nil {
		if err := app.monitor.Start(ctx); err != nil {
			logger.Warn("monitor start", logging.Error(err))
		}
		defer app.monitor.Stop()
	}

	<-ctx.Done()
	logger.Info("textflixd shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("webhook shutdown", logging.Error(err))
	}
}
