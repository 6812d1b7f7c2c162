package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const (
	carsKey           = "cache:cars"
	carsGenerationKey = "cache:cars:generation"

	idempotencyProcessing = "processing"
)

type RedisCache struct {
	client  *redis.Client
	carsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, carsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		carsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, carsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, carsTTL: carsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// carsEntry is the cached catalog tagged with the generation it was read under.
type carsEntry struct {
	Generation int64        `json:"generation"`
	Cars       []domain.Car `json:"cars"`
}

// GetCars returns nil without an error on a cache miss. An entry written
// under an older generation than the current one counts as a miss.
func (c *RedisCache) GetCars(ctx context.Context) ([]domain.Car, error) {
	vals, err := c.client.MGet(ctx, carsKey, carsGenerationKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "get cached cars")
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, nil
	}
	current, err := parseGeneration(vals[1])
	if err != nil {
		return nil, err
	}

	var entry carsEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, errors.Wrap(err, "decode cached cars")
	}
	if entry.Generation != current {
		return nil, nil
	}
	return entry.Cars, nil
}

// CarsGeneration must be read before the catalog is loaded from storage; the
// value is then passed to SetCars.
func (c *RedisCache) CarsGeneration(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, carsGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "get cars generation")
	}
	return n, nil
}

func (c *RedisCache) SetCars(ctx context.Context, generation int64, cars []domain.Car) error {
	payload, err := json.Marshal(carsEntry{Generation: generation, Cars: cars})
	if err != nil {
		return errors.Wrap(err, "encode cars")
	}
	return c.client.Set(ctx, carsKey, payload, c.carsTTL).Err()
}

// InvalidateCars bumps the generation, which orphans the current entry and
// any write still in flight from a read that started before the bump.
func (c *RedisCache) InvalidateCars(ctx context.Context) error {
	return c.client.Incr(ctx, carsGenerationKey).Err()
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse cars generation")
	}
	return n, nil
}

// ReserveKey claims an idempotency key. It reports false when the key was
// already claimed by an earlier request.
func (c *RedisCache) ReserveKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, idempotencyKey(key), idempotencyProcessing, ttl).Result()
}

// CompleteKey stores the response recorded for a claimed key.
func (c *RedisCache) CompleteKey(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return c.client.Set(ctx, idempotencyKey(key), response, ttl).Err()
}

// ReleaseKey drops a claim whose request failed so the client may retry.
func (c *RedisCache) ReleaseKey(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyKey(key)).Err()
}

// StoredResponse returns the recorded response for key. done is false while
// the first request is still in flight or when the key is unknown.
func (c *RedisCache) StoredResponse(ctx context.Context, key string) (response []byte, done bool, err error) {
	data, err := c.client.Get(ctx, idempotencyKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "get idempotency key")
	}
	if string(data) == idempotencyProcessing {
		return nil, false, nil
	}
	return data, true, nil
}

func idempotencyKey(key string) string {
	return "idempotency:booking:" + key
}
