package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/kafka"
	"github.com/Domenick1991/carrental/internal/metrics"
	"github.com/Domenick1991/carrental/internal/payment"
	"github.com/Domenick1991/carrental/internal/pkg/clock"
	"github.com/Domenick1991/carrental/internal/pkg/errs"
	"github.com/Domenick1991/carrental/internal/pricing"
	"github.com/Domenick1991/carrental/internal/repository"
	"github.com/cockroachdb/errors"
)

const (
	DefaultExpiryThreshold = 30 * time.Second
	DefaultPaymentTimeout  = 5 * time.Second

	ReasonExpired = "expired"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error)
	RequestPayment(ctx context.Context, id int64) (*domain.Booking, error)
	MarkPaid(ctx context.Context, id int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

// CarsInvalidator drops the cached catalog after availability changes.
type CarsInvalidator interface {
	InvalidateCars(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type CreateBookingInput struct {
	CarID              int64
	UserID             int64
	Email              string
	Pickup             time.Time
	Dropoff            time.Time
	DrivingLicensePath string
}

type BookingService struct {
	bookings   repository.BookingRepository
	cars       repository.CarRepository
	calculator pricing.Calculator
	processor  payment.Processor

	cache              CarsInvalidator
	producer           Producer
	bookingTopic       string
	notificationsTopic string

	clock           clock.Clock
	logger          *slog.Logger
	expiryThreshold time.Duration
	paymentTimeout  time.Duration
}

type BookingServiceOption func(*BookingService)

func WithCache(cache CarsInvalidator) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(c clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = c
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func WithExpiryThreshold(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.expiryThreshold = d
		}
	}
}

func WithPaymentTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.paymentTimeout = d
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	cars repository.CarRepository,
	calculator pricing.Calculator,
	processor payment.Processor,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		cars:            cars,
		calculator:      calculator,
		processor:       processor,
		clock:           clock.NewRealClock(),
		logger:          slog.Default(),
		expiryThreshold: DefaultExpiryThreshold,
		paymentTimeout:  DefaultPaymentTimeout,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) ExpiryThreshold() time.Duration {
	return s.expiryThreshold
}

// CreateBooking prices the window from the car's daily rate and stores a
// PENDING booking that holds the car. Nothing is written when the car is
// already held.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.CarID <= 0 {
		return nil, domain.InvalidInput("carId is required")
	}
	if input.UserID <= 0 {
		return nil, domain.InvalidInput("user is required")
	}
	if input.Pickup.IsZero() || input.Dropoff.IsZero() {
		return nil, domain.InvalidInput("pickup and dropoff are required")
	}
	if !input.Pickup.Before(input.Dropoff) {
		return nil, domain.ErrInvalidWindow
	}

	car, err := s.cars.GetByID(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Available {
		return nil, domain.ErrCarUnavailable
	}

	total, err := s.calculator.Calculate(car.PricePerDay, input.Pickup, input.Dropoff)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		CarID:              car.ID,
		UserID:             input.UserID,
		CustomerEmail:      input.Email,
		Pickup:             input.Pickup,
		Dropoff:            input.Dropoff,
		TotalPrice:         total,
		DrivingLicensePath: input.DrivingLicensePath,
		CreatedAt:          s.clock.Now(),
	}
	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.invalidateCars(ctx)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// ConfirmBooking charges the booking's total. A declined charge returns
// ErrPaymentFailed and leaves the booking PENDING so the caller may retry.
func (s *BookingService) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrAlreadyTerminal
	}

	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	approved, err := s.processor.ProcessPayment(payCtx, current.TotalPrice)
	cancel()
	if err != nil {
		metrics.PaymentAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, errs.Mark(errs.Wrap(err, "process payment"), domain.ErrPaymentFailed)
	}
	if !approved {
		metrics.PaymentAttempts.WithLabelValues(metrics.OutcomeDeclined).Inc()
		return nil, domain.ErrPaymentFailed
	}
	metrics.PaymentAttempts.WithLabelValues(metrics.OutcomeApproved).Inc()

	updated, err := s.bookings.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyTerminal) {
			s.logger.WarnContext(ctx, "payment approved for a booking that left PENDING",
				slog.Int64("booking_id", id), slog.String("amount", current.TotalPrice.String()))
		}
		return nil, err
	}

	metrics.BookingsConfirmed.Inc()
	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

// CancelBooking cancels a PENDING booking and releases its car.
// Cancelling a booking that is already CONFIRMED or CANCELLED returns
// ErrAlreadyTerminal and changes nothing.
func (s *BookingService) CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	updated, err := s.bookings.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.WithLabelValues(metrics.CauseUser).Inc()
	s.invalidateCars(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

func (s *BookingService) RequestPayment(ctx context.Context, id int64) (*domain.Booking, error) {
	updated, err := s.bookings.UpdatePaymentStatus(ctx, id,
		domain.PaymentSources(domain.PaymentStatusRequested), domain.PaymentStatusRequested)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingPaymentRequested, updated)
	return updated, nil
}

// MarkPaid records an out-of-band payment. The booking status is left alone.
func (s *BookingService) MarkPaid(ctx context.Context, id int64) (*domain.Booking, error) {
	updated, err := s.bookings.UpdatePaymentStatus(ctx, id,
		domain.PaymentSources(domain.PaymentStatusPaid), domain.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingPaid, updated)
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCars(ctx)
	s.publish(ctx, kafka.EventBookingDeleted, current)
	return nil
}

// ExpirePendingBookings cancels every booking that has stayed PENDING for
// longer than the expiry threshold. A failed cancel is logged and the sweep
// moves on to the next booking.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	cutoff := s.clock.Now().Add(-s.expiryThreshold)
	pending, err := s.bookings.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Booking, 0, len(pending))
	var (
		failed  int
		lastErr error
	)
	for _, b := range pending {
		updated, err := s.bookings.Cancel(ctx, b.ID, ReasonExpired)
		if errors.Is(err, domain.ErrAlreadyTerminal) || domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			failed++
			lastErr = err
			metrics.ExpirySweepErrors.Inc()
			s.logger.ErrorContext(ctx, "failed to expire booking",
				slog.Int64("booking_id", b.ID), slog.String("error", err.Error()))
			continue
		}

		metrics.BookingsCancelled.WithLabelValues(metrics.CauseExpired).Inc()
		s.logger.InfoContext(ctx, "booking expired",
			slog.Int64("booking_id", updated.ID), slog.Int64("car_id", updated.CarID))
		s.publish(ctx, kafka.EventBookingExpired, updated)
		expired = append(expired, *updated)
	}

	if len(expired) > 0 {
		s.invalidateCars(ctx)
	}
	if failed > 0 {
		return expired, errs.Wrap(lastErr, fmt.Sprintf("%d of %d expired bookings were not cancelled", failed, len(pending)))
	}
	return expired, nil
}

func (s *BookingService) invalidateCars(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCars(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cars cache", slog.String("error", err.Error()))
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.clock.Now())
	key := fmt.Sprintf("booking-%d", booking.ID)

	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish booking event",
			slog.String("type", eventType), slog.Int64("booking_id", booking.ID), slog.String("error", err.Error()))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish notification",
				slog.String("type", eventType), slog.Int64("booking_id", booking.ID), slog.String("error", err.Error()))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
