package cars

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/repository"
)

type CarUseCase interface {
	List(ctx context.Context) ([]domain.Car, error)
	ListAvailable(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	AddCar(ctx context.Context, car *domain.Car) (*domain.Car, error)
	RemoveCar(ctx context.Context, id int64) error
}

type CarsCache interface {
	GetCars(ctx context.Context) ([]domain.Car, error)
	CarsGeneration(ctx context.Context) (int64, error)
	SetCars(ctx context.Context, generation int64, cars []domain.Car) error
	InvalidateCars(ctx context.Context) error
}

type CarService struct {
	repo   repository.CarRepository
	cache  CarsCache
	logger *slog.Logger
}

// NewCarService accepts a nil cache; the catalog is then always read from the repository.
func NewCarService(repo repository.CarRepository, cache CarsCache, logger *slog.Logger) *CarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CarService{repo: repo, cache: cache, logger: logger}
}

// List serves the catalog from the cache when possible. The generation is read
// before the repository so a snapshot taken across an invalidation is never
// served afterwards.
func (s *CarService) List(ctx context.Context) ([]domain.Car, error) {
	cacheable := false
	var generation int64
	if s.cache != nil {
		if cached, err := s.cache.GetCars(ctx); err == nil && cached != nil {
			return cached, nil
		}
		gen, err := s.cache.CarsGeneration(ctx)
		if err == nil {
			cacheable, generation = true, gen
		}
	}

	cars, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetCars(ctx, generation, cars); err != nil {
			s.logger.WarnContext(ctx, "failed to cache cars", slog.String("error", err.Error()))
		}
	}
	return cars, nil
}

func (s *CarService) ListAvailable(ctx context.Context) ([]domain.Car, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]domain.Car, 0, len(all))
	for _, c := range all {
		if c.Available {
			available = append(available, c)
		}
	}
	return available, nil
}

func (s *CarService) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	return s.repo.GetByID(ctx, id)
}

// AddCar fills catalog defaults and stores the car as available.
func (s *CarService) AddCar(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	if err := car.Validate(); err != nil {
		return nil, err
	}
	car.Available = true
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "car added", slog.Int64("car_id", car.ID), slog.String("name", car.Name))
	return car, nil
}

func (s *CarService) RemoveCar(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "car removed", slog.Int64("car_id", id))
	return nil
}

// Seed adds cars only into an empty catalog and reports how many were added.
func (s *CarService) Seed(ctx context.Context, cars []domain.Car) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	added := 0
	for i := range cars {
		car := cars[i]
		if _, err := s.AddCar(ctx, &car); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *CarService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCars(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cars cache", slog.String("error", err.Error()))
	}
}

var _ CarUseCase = (*CarService)(nil)
