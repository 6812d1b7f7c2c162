package bootstrap

import (
	"github.com/Domenick1991/carrental/config"
	"go.uber.org/fx"
)

// AppModule wires the HTTP application: catalog, bookings, auth and the in-process expiry monitor.
var AppModule = fx.Options(
	ConfigModule,
	LoggerModule,
	StorageModule,
	InfraModule,
	ServiceModule,
	ExpiryModule,
	HTTPModule,
)

// WorkerModule wires the background worker. It always runs the notifier; the
// expiry sweep runs only when worker.run_expiry_sweep is set and storage is
// shared postgres, since a memory store is private to the HTTP process.
func WorkerModule(cfg *config.Config) fx.Option {
	sweep := cfg.Worker.RunExpirySweep && cfg.Storage.Driver == config.StoragePostgres
	cfg.Booking.RunExpiryMonitor = sweep

	opts := []fx.Option{
		fx.Supply(cfg),
		LoggerModule,
		NotifierModule,
	}
	if sweep {
		opts = append(opts, StorageModule, InfraModule, ServiceModule, ExpiryModule)
	}
	return fx.Options(opts...)
}
