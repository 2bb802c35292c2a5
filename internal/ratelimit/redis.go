// ratelimit — фиксированные окна для админских действий.
// Ключ окна задаёт вызывающий (например, "news-ingest:<uid>").
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis — счётчики окон в Redis: INCR, а на первом попадании — EXPIRE на длину окна.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "news-digest".
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	const op = "ratelimit.redis.NewRedis"

	if prefix == "" {
		prefix = "news-digest"
	}

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

	return &Redis{rdb: rdb, prefix: prefix}, nil
}

func (r *Redis) key(k string) string { return r.prefix + ":rl:" + k }

// Allow увеличивает счётчик окна и сообщает, укладывается ли вызов в limit.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	const op = "ratelimit.redis.Allow"

	k := r.key(key)

	n, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("%s: incr: %w", op, err)
	}

	if n == 1 {
		if err := r.rdb.Expire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("%s: expire: %w", op, err)
		}
	} else if ttl, err := r.rdb.TTL(ctx, k).Result(); err == nil && ttl < 0 {
		// Ключ без TTL остался от сбоя между INCR и EXPIRE.
		_ = r.rdb.Expire(ctx, k, window).Err()
	}

	return n <= int64(limit), nil
}

// Ping проверяет соединение (для /healthz).
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// Close закрывает клиент Redis.
func (r *Redis) Close() error { return r.rdb.Close() }
