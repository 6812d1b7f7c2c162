package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
)

// BookingRepository owns Booking records. Status changes are compare-and-set:
// they only apply when the stored status still matches, so request handlers and
// the expiry monitor can race without double transitions.
type BookingRepository interface {
	// CreatePending stores b as PENDING/UNPAID and marks its car unavailable in one step.
	CreatePending(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	// Confirm moves PENDING to CONFIRMED and records the payment as PAID.
	Confirm(ctx context.Context, id int64) (*domain.Booking, error)
	// Cancel moves PENDING to CANCELLED and makes the car available again.
	Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, error)
	// Delete removes the booking, releasing its car when it still held one.
	Delete(ctx context.Context, id int64) error
}

type CarRepository interface {
	List(ctx context.Context) ([]domain.Car, error)
	ListAvailable(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	Create(ctx context.Context, car *domain.Car) error
	// Delete refuses to remove a car that is held by a booking.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
