package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisIdempotency stores Idempotency-Key reservations for settlements.
// A key is "pendiente" while its request runs and holds the pago id after commit.
type RedisIdempotency struct {
	rdb *redis.Client
}

func NewRedisIdempotency(rdb *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb}
}

const idemPendiente = "pendiente"

// Reservar claims key with SETNX. False means the key is already in use.
func (r *RedisIdempotency) Reservar(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, key, idemPendiente, ttl).Result()
}

// Confirmar replaces the reservation with the committed pago id.
func (r *RedisIdempotency) Confirmar(ctx context.Context, key, pagoID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, pagoID, ttl).Err()
}

// Liberar drops a reservation whose request failed, so the caller may retry.
func (r *RedisIdempotency) Liberar(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
