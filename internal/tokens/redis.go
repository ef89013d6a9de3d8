package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ticket-client:tokens:"

// Redis хранит пару токенов в Redis Hash <prefix><namespace>.
// TTL продлевается при каждой записи, чтобы брошенные сессии не копились.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (r *Redis) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("tokens.Redis.Get: %w", err)
	}

	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, name, value string) error {
	const op = "tokens.Redis.Set"

	if value == "" {
		if err := r.rdb.HDel(ctx, r.key, name).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key, name, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("tokens.Redis.Clear: %w", err)
	}

	return nil
}

// RedisProvider раздаёт Redis-хранилища по id сессии поверх одного клиента.
type RedisProvider struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProvider создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Пустой prefix заменяется на "ticket-client:tokens:".
func NewRedisProvider(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisProvider, error) {
	const op = "tokens.NewRedisProvider"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewRedisProviderFromClient(rdb, prefix, ttl), nil
}

// NewRedisProviderFromClient оборачивает уже созданный клиент.
func NewRedisProviderFromClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisProvider {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &RedisProvider{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (p *RedisProvider) ForSession(id string) Store {
	return &Redis{rdb: p.rdb, key: p.prefix + id, ttl: p.ttl}
}

// Close закрывает клиент Redis.
func (p *RedisProvider) Close() error { return p.rdb.Close() }
