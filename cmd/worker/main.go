package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/bootstrap"
	"go.uber.org/fx"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Worker.RunExpirySweep && cfg.Storage.Driver != config.StoragePostgres {
		slog.Warn("expiry sweep needs postgres storage, running notifier only")
	}

	app := fx.New(bootstrap.WorkerModule(cfg), fx.NopLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		slog.Error("worker failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		slog.Info("worker shutdown requested", slog.Int("exit_code", sig.ExitCode))
	}

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("worker failed to stop cleanly", slog.String("error", err.Error()))
	}
	slog.Info("worker stopped")
}
