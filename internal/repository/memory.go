package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
)

// MemoryStore keeps cars, bookings and users behind one mutex so that a
// booking's status and its car's availability always change together.
type MemoryStore struct {
	mu sync.Mutex

	cars     map[int64]*domain.Car
	bookings map[int64]*domain.Booking
	users    map[int64]*domain.User

	nextCarID     int64
	nextBookingID int64
	nextUserID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cars:          make(map[int64]*domain.Car),
		bookings:      make(map[int64]*domain.Booking),
		users:         make(map[int64]*domain.User),
		nextCarID:     1,
		nextBookingID: 1,
		nextUserID:    1,
	}
}

// Bookings, Cars and Users expose the store through the narrower interfaces.
func (s *MemoryStore) Bookings() BookingRepository { return (*memoryBookings)(s) }
func (s *MemoryStore) Cars() CarRepository         { return (*memoryCars)(s) }
func (s *MemoryStore) Users() UserRepository       { return (*memoryUsers)(s) }

type memoryBookings MemoryStore

func (r *memoryBookings) CreatePending(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	car, ok := r.cars[b.CarID]
	if !ok {
		return domain.ErrCarNotFound
	}
	if !car.Available {
		return domain.ErrCarUnavailable
	}

	car.Available = false
	b.ID = r.nextBookingID
	r.nextBookingID++
	b.Status = domain.BookingStatusPending
	b.PaymentStatus = domain.PaymentStatusUnpaid
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt

	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *memoryBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *memoryBookings) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.UserID == userID }), nil
}

func (r *memoryBookings) ListAll(_ context.Context) ([]domain.Booking, error) {
	return r.filter(func(*domain.Booking) bool { return true }), nil
}

func (r *memoryBookings) ListPendingCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPending && b.CreatedAt.Before(cutoff)
	}), nil
}

func (r *memoryBookings) filter(keep func(*domain.Booking) bool) []domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryBookings) Confirm(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.pendingLocked(id)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusConfirmed
	b.PaymentStatus = domain.PaymentStatusPaid
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

func (r *memoryBookings) Cancel(_ context.Context, id int64, reason string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.pendingLocked(id)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusCancelled
	b.CancelReason = reason
	b.UpdatedAt = time.Now()
	if car, ok := r.cars[b.CarID]; ok {
		car.Available = true
	}
	out := *b
	return &out, nil
}

func (r *memoryBookings) pendingLocked(id int64) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrAlreadyTerminal
	}
	return b, nil
}

func (r *memoryBookings) UpdatePaymentStatus(_ context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyTerminal
	}
	if !slices.Contains(from, b.PaymentStatus) {
		return nil, domain.ErrPaymentState
	}
	b.PaymentStatus = to
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

func (r *memoryBookings) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if b.Status != domain.BookingStatusCancelled {
		if car, ok := r.cars[b.CarID]; ok {
			car.Available = true
		}
	}
	delete(r.bookings, id)
	return nil
}

type memoryCars MemoryStore

func (r *memoryCars) List(_ context.Context) ([]domain.Car, error) {
	return r.filter(func(*domain.Car) bool { return true }), nil
}

func (r *memoryCars) ListAvailable(_ context.Context) ([]domain.Car, error) {
	return r.filter(func(c *domain.Car) bool { return c.Available }), nil
}

func (r *memoryCars) filter(keep func(*domain.Car) bool) []domain.Car {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Car, 0, len(r.cars))
	for _, c := range r.cars {
		if keep(c) {
			out = append(out, copyCar(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryCars) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cars[id]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	out := copyCar(c)
	return &out, nil
}

func (r *memoryCars) Create(_ context.Context, car *domain.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	car.ID = r.nextCarID
	r.nextCarID++
	if car.CreatedAt.IsZero() {
		car.CreatedAt = time.Now()
	}
	stored := copyCar(car)
	r.cars[car.ID] = &stored
	return nil
}

func (r *memoryCars) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cars[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	if !c.Available {
		return domain.ErrCarUnavailable
	}
	delete(r.cars, id)
	for bid, b := range r.bookings {
		if b.CarID == id {
			delete(r.bookings, bid)
		}
	}
	return nil
}

func (r *memoryCars) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cars), nil
}

func copyCar(c *domain.Car) domain.Car {
	out := *c
	out.Features = slices.Clone(c.Features)
	return out
}

type memoryUsers MemoryStore

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	user.ID = r.nextUserID
	r.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

var (
	_ BookingRepository = (*memoryBookings)(nil)
	_ CarRepository     = (*memoryCars)(nil)
	_ UserRepository    = (*memoryUsers)(nil)
)
