package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/carrental/api"
	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/cache"
	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/pkg/jwt"
	"github.com/Domenick1991/carrental/internal/service/auth"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/Domenick1991/carrental/internal/service/cars"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const readHeaderTimeout = 10 * time.Second

var HTTPModule = fx.Module("http",
	fx.Provide(
		NewHTTPServer,
	),
	fx.Invoke(seedData, startHTTPServer),
)

type httpDeps struct {
	fx.In

	Config   *config.Config
	Cars     cars.CarUseCase
	Bookings booking.BookingUseCase
	Auth     auth.AuthUseCase
	Tokens   *jwt.Service
	Cache    *cache.RedisCache
	Logger   *slog.Logger
}

func NewHTTPServer(deps httpDeps) *http.Server {
	routerDeps := api.RouterDeps{
		Cars:     deps.Cars,
		Bookings: deps.Bookings,
		Auth:     deps.Auth,
		Tokens:   deps.Tokens,
		Logger:   deps.Logger,
	}
	if deps.Cache != nil {
		routerDeps.Idempotency = deps.Cache
	}

	return &http.Server{
		Addr:              deps.Config.HTTP.Address,
		Handler:           api.NewRouter(deps.Config, routerDeps),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startHTTPServer binds the listener during start so a busy port fails the app immediately.
func startHTTPServer(lc fx.Lifecycle, srv *http.Server, shutdowner fx.Shutdowner, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := new(net.ListenConfig).Listen(ctx, "tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", slog.String("address", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server failed", slog.String("error", err.Error()))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("http server stopping")
			return srv.Shutdown(ctx)
		},
	})
}

type seedDeps struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Cars      *cars.CarService
	Auth      *auth.AuthService
	Logger    *slog.Logger
}

// seedData fills an empty catalog from the seed section and makes sure the
// configured admin account exists.
func seedData(deps seedDeps) {
	deps.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			added, err := deps.Cars.Seed(ctx, seedCars(deps.Config.Seed))
			if err != nil {
				return err
			}
			if added > 0 {
				deps.Logger.Info("seeded car catalog", slog.Int("cars", added))
			}

			admin := deps.Config.Auth
			if admin.AdminEmail == "" || admin.AdminPassword == "" {
				return nil
			}
			return deps.Auth.EnsureAdmin(ctx, admin.AdminName, admin.AdminEmail, admin.AdminPassword)
		},
	})
}

func seedCars(seed config.SeedConfig) []domain.Car {
	out := make([]domain.Car, 0, len(seed.Cars))
	for _, c := range seed.Cars {
		out = append(out, domain.Car{
			Name:               c.Name,
			PricePerDay:        decimal.NewFromFloat(c.PricePerDay),
			Image:              c.Image,
			Features:           c.Features,
			Type:               c.Type,
			RegistrationNumber: c.RegistrationNumber,
		})
	}
	return out
}
