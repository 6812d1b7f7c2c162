package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/kafka"
	"github.com/Domenick1991/carrental/internal/pkg/clock"
	"github.com/Domenick1991/carrental/internal/pricing"
	crerrors "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	monday  = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	quietLg = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type fixture struct {
	bookings  *MockBookingRepository
	cars      *MockCarRepository
	cache     *MockCache
	producer  *MockProducer
	processor *MockProcessor
	clock     *clock.MockClock
	service   *BookingService
}

func newFixture() *fixture {
	f := &fixture{
		bookings:  &MockBookingRepository{},
		cars:      &MockCarRepository{},
		cache:     &MockCache{},
		producer:  &MockProducer{},
		processor: &MockProcessor{},
		clock:     clock.NewMockClock(monday),
	}
	f.service = NewBookingService(f.bookings, f.cars, pricing.NewWeekendCalculator(decimal.Zero), f.processor,
		WithCache(f.cache),
		WithProducer(f.producer, "booking_topic"),
		WithClock(f.clock),
		WithLogger(quietLg),
	)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.bookings.AssertExpectations(t)
	f.cars.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.producer.AssertExpectations(t)
	f.processor.AssertExpectations(t)
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	car := &domain.Car{ID: 4, PricePerDay: decimal.NewFromInt(50), Available: true}
	f.cars.On("GetByID", ctx, int64(4)).Return(car, nil).Once()
	f.bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*domain.Booking)
			b.ID = 1
			b.Status = domain.BookingStatusPending
			b.PaymentStatus = domain.PaymentStatusUnpaid
		}).Return(nil).Once()
	f.cache.On("InvalidateCars", ctx).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.BookingID == 1
	})).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, CreateBookingInput{
		CarID:   4,
		UserID:  9,
		Email:   "test@example.com",
		Pickup:  monday,
		Dropoff: monday.Add(48 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.True(t, booking.TotalPrice.Equal(decimal.NewFromInt(100)), booking.TotalPrice.String())
	assert.Equal(t, monday, booking.CreatedAt)
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       CreateBookingInput
		expectedErr error
	}{
		{
			name:        "missing car",
			input:       CreateBookingInput{UserID: 1, Pickup: monday, Dropoff: monday.Add(time.Hour)},
			expectedErr: domain.ErrInvalidInput,
		},
		{
			name:        "missing window",
			input:       CreateBookingInput{CarID: 1, UserID: 1},
			expectedErr: domain.ErrInvalidInput,
		},
		{
			name:        "dropoff before pickup",
			input:       CreateBookingInput{CarID: 1, UserID: 1, Pickup: monday, Dropoff: monday.Add(-time.Hour)},
			expectedErr: domain.ErrInvalidWindow,
		},
		{
			name:        "empty window",
			input:       CreateBookingInput{CarID: 1, UserID: 1, Pickup: monday, Dropoff: monday},
			expectedErr: domain.ErrInvalidWindow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := f.service.CreateBooking(ctx, tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Nil(t, booking)
		})
	}
	f.cars.AssertNotCalled(t, "GetByID")
	f.bookings.AssertNotCalled(t, "CreatePending")
}

func TestBookingService_CreateBooking_CarUnavailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cars.On("GetByID", ctx, int64(4)).Return(&domain.Car{ID: 4, PricePerDay: decimal.NewFromInt(50)}, nil).Once()

	booking, err := f.service.CreateBooking(ctx, CreateBookingInput{CarID: 4, UserID: 1, Pickup: monday, Dropoff: monday.Add(time.Hour)})

	assert.ErrorIs(t, err, domain.ErrCarUnavailable)
	assert.Nil(t, booking)
	f.bookings.AssertNotCalled(t, "CreatePending")
	f.producer.AssertNotCalled(t, "Publish")
}

func TestBookingService_CreateBooking_RepositoryError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cars.On("GetByID", ctx, int64(4)).Return(&domain.Car{ID: 4, PricePerDay: decimal.NewFromInt(50), Available: true}, nil).Once()
	expectedErr := domain.StoreError(errors.New("database error"), "insert booking")
	f.bookings.On("CreatePending", ctx, mock.Anything).Return(expectedErr).Once()

	booking, err := f.service.CreateBooking(ctx, CreateBookingInput{CarID: 4, UserID: 1, Pickup: monday, Dropoff: monday.Add(time.Hour)})

	assert.Nil(t, booking)
	assert.True(t, crerrors.Is(err, domain.ErrStore))
	f.cache.AssertNotCalled(t, "InvalidateCars", mock.Anything)
}

func TestBookingService_ConfirmBooking_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pending := &domain.Booking{ID: 1, CarID: 4, TotalPrice: decimal.NewFromInt(100), Status: domain.BookingStatusPending}
	confirmed := &domain.Booking{ID: 1, CarID: 4, TotalPrice: decimal.NewFromInt(100),
		Status: domain.BookingStatusConfirmed, PaymentStatus: domain.PaymentStatusPaid}

	f.bookings.On("GetByID", ctx, int64(1)).Return(pending, nil).Once()
	f.processor.On("ProcessPayment", mock.Anything, decimal.NewFromInt(100)).Return(true, nil).Once()
	f.bookings.On("Confirm", ctx, int64(1)).Return(confirmed, nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.Anything).Return(nil).Once()

	booking, err := f.service.ConfirmBooking(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentStatusPaid, booking.PaymentStatus)
	f.assertExpectations(t)
}

func TestBookingService_ConfirmBooking_Declined(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pending := &domain.Booking{ID: 1, TotalPrice: decimal.NewFromInt(100), Status: domain.BookingStatusPending}
	f.bookings.On("GetByID", ctx, int64(1)).Return(pending, nil).Once()
	f.processor.On("ProcessPayment", mock.Anything, mock.Anything).Return(false, nil).Once()

	booking, err := f.service.ConfirmBooking(ctx, 1)

	assert.ErrorIs(t, err, domain.ErrPaymentFailed)
	assert.Nil(t, booking)
	f.bookings.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestBookingService_ConfirmBooking_ProcessorError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, Status: domain.BookingStatusPending}, nil).Once()
	f.processor.On("ProcessPayment", mock.Anything, mock.Anything).Return(false, context.DeadlineExceeded).Once()

	_, err := f.service.ConfirmBooking(ctx, 1)

	assert.True(t, crerrors.Is(err, domain.ErrPaymentFailed))
	f.bookings.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestBookingService_ConfirmBooking_NotPending(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			f.bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, Status: status}, nil).Once()

			booking, err := f.service.ConfirmBooking(ctx, 1)

			assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
			assert.Nil(t, booking)
			f.processor.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingService_ConfirmBooking_NotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrBookingNotFound).Once()

	_, err := f.service.ConfirmBooking(ctx, 99)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cancelled := &domain.Booking{ID: 1, CarID: 4, Status: domain.BookingStatusCancelled, CancelReason: "changed plans"}
	f.bookings.On("Cancel", ctx, int64(1), "changed plans").Return(cancelled, nil).Once()
	f.cache.On("InvalidateCars", ctx).Return(errors.New("redis down")).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Reason == "changed plans"
	})).Return(nil).Once()

	booking, err := f.service.CancelBooking(ctx, 1, "changed plans")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	f.assertExpectations(t)
}

func TestBookingService_CancelBooking_AlreadyTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("Cancel", ctx, int64(1), "").Return(nil, domain.ErrAlreadyTerminal).Once()

	booking, err := f.service.CancelBooking(ctx, 1, "")

	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	assert.Nil(t, booking)
	f.producer.AssertNotCalled(t, "Publish")
}

func TestBookingService_PaymentAxis(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	requested := &domain.Booking{ID: 1, Status: domain.BookingStatusPending, PaymentStatus: domain.PaymentStatusRequested}
	paid := &domain.Booking{ID: 1, Status: domain.BookingStatusPending, PaymentStatus: domain.PaymentStatusPaid}
	f.bookings.On("UpdatePaymentStatus", ctx, int64(1), []domain.PaymentStatus{domain.PaymentStatusUnpaid}, domain.PaymentStatusRequested).
		Return(requested, nil).Once()
	f.bookings.On("UpdatePaymentStatus", ctx, int64(1), mock.Anything, domain.PaymentStatusPaid).Return(paid, nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.Anything).Return(nil).Twice()

	got, err := f.service.RequestPayment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRequested, got.PaymentStatus)

	got, err = f.service.MarkPaid(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	f.assertExpectations(t)
}

func TestBookingService_ExpirePendingBookings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.clock.Set(monday.Add(time.Minute))

	stale := []domain.Booking{
		{ID: 1, CarID: 4, Status: domain.BookingStatusPending},
		{ID: 2, CarID: 5, Status: domain.BookingStatusPending},
		{ID: 3, CarID: 6, Status: domain.BookingStatusPending},
	}
	f.bookings.On("ListPendingCreatedBefore", ctx, monday.Add(30*time.Second)).Return(stale, nil).Once()
	f.bookings.On("Cancel", ctx, int64(1), ReasonExpired).
		Return(&domain.Booking{ID: 1, CarID: 4, Status: domain.BookingStatusCancelled}, nil).Once()
	f.bookings.On("Cancel", ctx, int64(2), ReasonExpired).Return(nil, domain.ErrAlreadyTerminal).Once()
	f.bookings.On("Cancel", ctx, int64(3), ReasonExpired).
		Return(nil, domain.StoreError(errors.New("connection reset"), "cancel booking")).Once()
	f.cache.On("InvalidateCars", ctx).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingExpired
	})).Return(nil).Once()

	expired, err := f.service.ExpirePendingBookings(ctx)

	assert.Error(t, err)
	assert.True(t, crerrors.Is(err, domain.ErrStore))
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].ID)
	f.assertExpectations(t)
}

func TestBookingService_ExpirePendingBookings_Nothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("ListPendingCreatedBefore", ctx, mock.Anything).Return([]domain.Booking{}, nil).Once()

	expired, err := f.service.ExpirePendingBookings(ctx)

	require.NoError(t, err)
	assert.Empty(t, expired)
	f.cache.AssertNotCalled(t, "InvalidateCars", mock.Anything)
}

func TestBookingService_PublishesToNotificationsTopic(t *testing.T) {
	f := newFixture()
	WithNotificationsTopic("notifications")(f.service)
	ctx := context.Background()

	f.bookings.On("Cancel", ctx, int64(1), "").Return(&domain.Booking{ID: 1, Status: domain.BookingStatusCancelled}, nil).Once()
	f.cache.On("InvalidateCars", ctx).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "booking-1", mock.Anything).Return(nil).Once()
	f.producer.On("Publish", ctx, "notifications", "booking-1", mock.Anything).Return(nil).Once()

	_, err := f.service.CancelBooking(ctx, 1, "")

	require.NoError(t, err)
	f.producer.AssertExpectations(t)
}

func TestBookingService_WithoutOptionalDependencies(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := NewBookingService(bookings, &MockCarRepository{}, pricing.NewWeekendCalculator(decimal.Zero), &MockProcessor{})
	ctx := context.Background()

	bookings.On("Cancel", ctx, int64(1), "").Return(&domain.Booking{ID: 1, Status: domain.BookingStatusCancelled}, nil).Once()

	_, err := service.CancelBooking(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultExpiryThreshold, service.ExpiryThreshold())
}
