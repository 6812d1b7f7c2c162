package bootstrap

import (
	"log/slog"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/cache"
	"github.com/Domenick1991/carrental/internal/kafka"
	"github.com/Domenick1991/carrental/internal/payment"
	"github.com/Domenick1991/carrental/internal/pkg/jwt"
	"github.com/Domenick1991/carrental/internal/pricing"
	"github.com/Domenick1991/carrental/internal/repository"
	"github.com/Domenick1991/carrental/internal/service/auth"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/Domenick1991/carrental/internal/service/cars"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

var ServiceModule = fx.Module("service",
	fx.Provide(
		NewCalculator,
		NewProcessor,
		NewJWTService,
		NewCarService,
		NewBookingService,
		NewAuthService,
		func(s *cars.CarService) cars.CarUseCase { return s },
		func(s *booking.BookingService) booking.BookingUseCase { return s },
		func(s *auth.AuthService) auth.AuthUseCase { return s },
	),
)

func NewCalculator(cfg *config.Config) pricing.Calculator {
	return pricing.NewWeekendCalculator(decimal.NewFromFloat(cfg.Booking.WeekendMultiplier))
}

func NewProcessor(cfg *config.Config) payment.Processor {
	return payment.NewSimulated(cfg.Payment.Approve, decimal.NewFromFloat(cfg.Payment.MaxAmount))
}

func NewJWTService(cfg *config.Config) *jwt.Service {
	return jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
}

func NewCarService(repo repository.CarRepository, rc *cache.RedisCache, logger *slog.Logger) *cars.CarService {
	var carsCache cars.CarsCache
	if rc != nil {
		carsCache = rc
	}
	return cars.NewCarService(repo, carsCache, logger)
}

type bookingDeps struct {
	fx.In

	Config     *config.Config
	Bookings   repository.BookingRepository
	Cars       repository.CarRepository
	Calculator pricing.Calculator
	Processor  payment.Processor
	Cache      *cache.RedisCache
	Producer   *kafka.Producer
	Logger     *slog.Logger
}

func NewBookingService(deps bookingDeps) *booking.BookingService {
	opts := []booking.BookingServiceOption{
		booking.WithLogger(deps.Logger),
		booking.WithExpiryThreshold(deps.Config.Booking.ExpiryThreshold()),
		booking.WithPaymentTimeout(deps.Config.Booking.PaymentTimeout()),
	}
	if deps.Cache != nil {
		opts = append(opts, booking.WithCache(deps.Cache))
	}
	if deps.Producer != nil {
		opts = append(opts,
			booking.WithProducer(deps.Producer, deps.Config.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(deps.Config.Kafka.NotificationsTopic),
		)
	}
	return booking.NewBookingService(deps.Bookings, deps.Cars, deps.Calculator, deps.Processor, opts...)
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Service, logger *slog.Logger) *auth.AuthService {
	return auth.NewAuthService(users, tokens, auth.WithLogger(logger))
}
