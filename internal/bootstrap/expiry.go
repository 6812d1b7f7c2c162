package bootstrap

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/Domenick1991/carrental/internal/worker"
	"go.uber.org/fx"
)

var ExpiryModule = fx.Module("expiry",
	fx.Provide(
		NewExpiryMonitor,
	),
	fx.Invoke(runExpiryMonitor),
)

func NewExpiryMonitor(svc booking.BookingUseCase, cfg *config.Config, logger *slog.Logger) *worker.ExpiryMonitor {
	return worker.NewExpiryMonitor(svc, cfg.Booking.SweepInterval(), logger.With(slog.String("component", "expiry")))
}

// runExpiryMonitor ties the monitor to the app lifecycle when booking.run_expiry_monitor is set.
func runExpiryMonitor(lc fx.Lifecycle, monitor *worker.ExpiryMonitor, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Booking.RunExpiryMonitor {
		logger.Info("expiry monitor disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			monitor.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return monitor.Stop(ctx)
		},
	})
}
