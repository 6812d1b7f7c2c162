package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, car_id, user_id, customer_email, pickup_at, dropoff_at, total_price, status, payment_status, driving_license_path, cancel_reason, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StoreError(err, "begin create booking")
	}
	defer tx.Rollback(ctx)

	var held int64
	err = tx.QueryRow(ctx, `UPDATE cars SET available = FALSE WHERE id=$1 AND available RETURNING id`, booking.CarID).Scan(&held)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cars WHERE id=$1)`, booking.CarID).Scan(&exists); err != nil {
			return domain.StoreError(err, "check car")
		}
		if !exists {
			return domain.ErrCarNotFound
		}
		return domain.ErrCarUnavailable
	}
	if err != nil {
		return domain.StoreError(err, "hold car")
	}

	booking.Status = domain.BookingStatusPending
	booking.PaymentStatus = domain.PaymentStatusUnpaid
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (car_id, user_id, customer_email, pickup_at, dropoff_at, total_price, status, payment_status, driving_license_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, updated_at`,
		booking.CarID, booking.UserID, booking.CustomerEmail, booking.Pickup, booking.Dropoff, booking.TotalPrice,
		booking.Status, booking.PaymentStatus, booking.DrivingLicensePath, booking.CreatedAt).
		Scan(&booking.ID, &booking.UpdatedAt); err != nil {
		return domain.StoreError(err, "insert booking")
	}

	return domain.StoreError(tx.Commit(ctx), "commit create booking")
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, domain.StoreError(err, "get booking")
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY id`, userID)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY id`)
}

func (r *PGBookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 AND created_at < $2 ORDER BY id`,
		domain.BookingStatusPending, cutoff)
}

func (r *PGBookingRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.StoreError(err, "list bookings")
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.StoreError(err, "scan booking")
		}
		bookings = append(bookings, *b)
	}
	return bookings, domain.StoreError(rows.Err(), "list bookings")
}

func (r *PGBookingRepository) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, payment_status=$2, updated_at=now()
		WHERE id=$3 AND status=$4 RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, domain.PaymentStatusPaid, id, domain.BookingStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.notPending(ctx, r.db, id)
	}
	if err != nil {
		return nil, domain.StoreError(err, "confirm booking")
	}
	return b, nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.StoreError(err, "begin cancel booking")
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, cancel_reason=$2, updated_at=now()
		WHERE id=$3 AND status=$4 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, reason, id, domain.BookingStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.notPending(ctx, tx, id)
	}
	if err != nil {
		return nil, domain.StoreError(err, "cancel booking")
	}

	if _, err := tx.Exec(ctx, `UPDATE cars SET available = TRUE WHERE id=$1`, b.CarID); err != nil {
		return nil, domain.StoreError(err, "release car")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StoreError(err, "commit cancel booking")
	}
	return b, nil
}

func (r *PGBookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, error) {
	sources := make([]string, 0, len(from))
	for _, s := range from {
		sources = append(sources, string(s))
	}

	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now()
		WHERE id=$2 AND status<>$3 AND payment_status = ANY($4) RETURNING `+bookingColumns,
		to, id, domain.BookingStatusCancelled, sources))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.StoreError(err, "update payment status")
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyTerminal
	}
	return nil, domain.ErrPaymentState
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StoreError(err, "begin delete booking")
	}
	defer tx.Rollback(ctx)

	var (
		carID  int64
		status domain.BookingStatus
	)
	err = tx.QueryRow(ctx, `DELETE FROM bookings WHERE id=$1 RETURNING car_id, status`, id).Scan(&carID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return domain.StoreError(err, "delete booking")
	}

	if status != domain.BookingStatusCancelled {
		if _, err := tx.Exec(ctx, `UPDATE cars SET available = TRUE WHERE id=$1`, carID); err != nil {
			return domain.StoreError(err, "release car")
		}
	}
	return domain.StoreError(tx.Commit(ctx), "commit delete booking")
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// notPending explains why a compare-and-set on PENDING matched nothing.
func (r *PGBookingRepository) notPending(ctx context.Context, q rowQuerier, id int64) error {
	var status domain.BookingStatus
	err := q.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return domain.StoreError(err, "check booking")
	}
	return domain.ErrAlreadyTerminal
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CarID, &b.UserID, &b.CustomerEmail, &b.Pickup, &b.Dropoff, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.DrivingLicensePath, &b.CancelReason, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
