package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const carColumns = `id, name, price_per_day, image, features, available, type, registration_number, created_at`

type PGCarRepository struct {
	db *pgxpool.Pool
}

func NewCarRepository(db *pgxpool.Pool) CarRepository {
	return &PGCarRepository{db: db}
}

func (r *PGCarRepository) List(ctx context.Context) ([]domain.Car, error) {
	return r.query(ctx, `SELECT `+carColumns+` FROM cars ORDER BY id`)
}

func (r *PGCarRepository) ListAvailable(ctx context.Context) ([]domain.Car, error) {
	return r.query(ctx, `SELECT `+carColumns+` FROM cars WHERE available ORDER BY id`)
}

func (r *PGCarRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Car, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.StoreError(err, "list cars")
	}
	defer rows.Close()

	cars := make([]domain.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, domain.StoreError(err, "scan car")
		}
		cars = append(cars, *c)
	}
	return cars, domain.StoreError(rows.Err(), "list cars")
}

func (r *PGCarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	c, err := scanCar(r.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCarNotFound
	}
	if err != nil {
		return nil, domain.StoreError(err, "get car")
	}
	return c, nil
}

func (r *PGCarRepository) Create(ctx context.Context, car *domain.Car) error {
	err := r.db.QueryRow(ctx, `INSERT INTO cars (name, price_per_day, image, features, available, type, registration_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		car.Name, car.PricePerDay, car.Image, car.Features, car.Available, car.Type, car.RegistrationNumber).
		Scan(&car.ID, &car.CreatedAt)
	return domain.StoreError(err, "create car")
}

func (r *PGCarRepository) Delete(ctx context.Context, id int64) error {
	var deleted int64
	err := r.db.QueryRow(ctx, `DELETE FROM cars WHERE id=$1 AND available RETURNING id`, id).Scan(&deleted)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreError(err, "delete car")
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cars WHERE id=$1)`, id).Scan(&exists); err != nil {
		return domain.StoreError(err, "delete car")
	}
	if !exists {
		return domain.ErrCarNotFound
	}
	return domain.ErrCarUnavailable
}

func (r *PGCarRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM cars`).Scan(&n)
	return n, domain.StoreError(err, "count cars")
}

func scanCar(row pgx.Row) (*domain.Car, error) {
	var c domain.Car
	if err := row.Scan(&c.ID, &c.Name, &c.PricePerDay, &c.Image, &c.Features, &c.Available, &c.Type, &c.RegistrationNumber, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CarRepository = (*PGCarRepository)(nil)
