package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/congo-pay/signin/internal/config"
	"github.com/congo-pay/signin/internal/infra"
	"github.com/congo-pay/signin/internal/logging"
	"github.com/congo-pay/signin/internal/routes"
	"github.com/congo-pay/signin/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	backends, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	store, err := backends.Users()
	if err != nil {
		logger.Error("user store", "error", err)
		os.Exit(1)
	}
	creds, err := backends.Credentials()
	if err != nil {
		logger.Error("credential repository", "error", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Cfg:         cfg,
		DB:          backends.DB,
		Cache:       backends.Cache,
		Logger:      logger,
		Users:       store,
		Credentials: creds,
	}
	if backends.Media != nil {
		deps.Media = backends.Media
	}

	srv, err := server.New(deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
