package bootstrap

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/kafka"
	"github.com/Domenick1991/carrental/internal/notify"
	"go.uber.org/fx"
)

// NotifierModule consumes booking notifications and hands them to the sender.
var NotifierModule = fx.Module("notifier",
	fx.Provide(
		notify.NewSender,
	),
	fx.Invoke(runNotifier),
)

func runNotifier(lc fx.Lifecycle, cfg *config.Config, sender *notify.Sender, logger *slog.Logger) {
	if !cfg.Kafka.Enabled() {
		logger.Warn("kafka disabled, notifier has nothing to consume")
		return
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				logger.Info("notifier consuming", slog.String("topic", cfg.Kafka.NotificationsTopic))
				if err := consumer.Consume(ctx, sender.Send); err != nil {
					logger.Error("notifier stopped", slog.String("error", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return consumer.Close()
		},
	})
}
