package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/repository"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

var StorageModule = fx.Module("storage",
	fx.Provide(
		NewRepositories,
	),
)

type Repositories struct {
	fx.Out

	Bookings repository.BookingRepository
	Cars     repository.CarRepository
	Users    repository.UserRepository
}

// NewRepositories opens the configured store. Postgres gets its schema
// ensured up front and the pool closed on shutdown.
func NewRepositories(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (Repositories, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		logger.Info("using in-memory storage")
		store := repository.NewMemoryStore()
		return Repositories{Bookings: store.Bookings(), Cars: store.Cars(), Users: store.Users()}, nil
	}

	pool, err := connectPostgres(cfg.Database)
	if err != nil {
		return Repositories{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			pool.Close()
			return nil
		},
	})

	logger.Info("using postgres storage", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.Name))
	return Repositories{
		Bookings: repository.NewBookingRepository(pool),
		Cars:     repository.NewCarRepository(pool),
		Users:    repository.NewUserRepository(pool),
	}, nil
}

func connectPostgres(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
