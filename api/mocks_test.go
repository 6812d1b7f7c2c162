package api

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/pkg/jwt"
	"github.com/Domenick1991/carrental/internal/service/auth"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, input))
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, reason))
}

func (m *MockBookingUseCase) RequestPayment(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) MarkPaid(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCarUseCase struct {
	mock.Mock
}

func (m *MockCarUseCase) List(ctx context.Context) ([]domain.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarUseCase) ListAvailable(ctx context.Context) ([]domain.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarUseCase) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarUseCase) AddCar(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	args := m.Called(ctx, car)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarUseCase) RemoveCar(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, input auth.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, plain string) (*auth.LoginResult, error) {
	args := m.Called(ctx, email, plain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResult), args.Error(1)
}

func (m *MockAuthUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// staticTokens accepts exactly the tokens it was built with.
type staticTokens map[string]*jwt.Claims

func (s staticTokens) ValidateToken(token string) (*jwt.Claims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return claims, nil
}

type memoryIdempotency struct {
	mu      sync.Mutex
	pending map[string]bool
	done    map[string][]byte
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{pending: map[string]bool{}, done: map[string][]byte{}}
}

func (s *memoryIdempotency) ReserveKey(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[key] {
		return false, nil
	}
	if _, ok := s.done[key]; ok {
		return false, nil
	}
	s.pending[key] = true
	return true, nil
}

func (s *memoryIdempotency) CompleteKey(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	s.done[key] = append([]byte(nil), response...)
	return nil
}

func (s *memoryIdempotency) ReleaseKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	return nil
}

func (s *memoryIdempotency) StoredResponse(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.done[key]
	return resp, ok, nil
}

// asUser stands in for RequireAuth in handler tests.
func asUser(id int64, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserIDKey, id)
		c.Set(ctxUserRoleKey, role)
		c.Set(ctxUserEmailKey, "user@example.com")
		c.Next()
	}
}
