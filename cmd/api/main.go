package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/app"
	"github.com/spec-kit/queuesmart/internal/config"
	"github.com/spec-kit/queuesmart/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer container.Close()

	bootstrap, err := container.Bootstrap(ctx)
	if err != nil {
		logger.Fatal("failed to bootstrap manager account", zap.Error(err))
	}
	if bootstrap != nil && cfg.Bootstrap.ManagerPassword == "" {
		logger.Warn("generated initial manager password; change it after first login",
			zap.String("username", bootstrap.Staff.Username),
			zap.String("password", bootstrap.Password))
	}

	server := container.HTTPApp()

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("queuesmart api listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))

	waitForShutdown(logger)

	if err := server.ShutdownWithTimeout(cfg.App.RequestTimeout()); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
