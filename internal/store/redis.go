// ABOUTME: Redis implementation of the Store interface
// ABOUTME: One Redis string per key under a configurable prefix; PutMany uses MULTI/EXEC

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces schoolbook keys inside a shared Redis database
const DefaultRedisPrefix = "schoolbook:"

// RedisOptions configures NewRedisStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string

	// DialTimeout bounds connection setup; zero means 2s
	DialTimeout time.Duration
}

// RedisStore implements the Store interface on top of a Redis client
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore connects to redis with short timeouts and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	logger := slog.Default().With("component", "store", "backend", "redis")
	logger.Info("Redis store initialized", "addr", opts.Addr, "prefix", prefix)

	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

func (r *RedisStore) redisKey(key Key) string {
	return r.prefix + string(key)
}

// Get returns the document stored under key, or ErrAbsent.
func (r *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	value, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Put replaces the document stored under key.
func (r *RedisStore) Put(ctx context.Context, key Key, value []byte) error {
	if err := checkWrite(key, value); err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	r.logger.Debug("wrote key", "key", key, "size", len(value))
	return nil
}

// Delete removes key.
func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// PutMany writes every value inside a MULTI/EXEC block.
func (r *RedisStore) PutMany(ctx context.Context, values map[Key][]byte) error {
	if err := checkBatch(values); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.redisKey(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %d keys: %w", len(values), err)
	}

	r.logger.Debug("wrote keys atomically", "count", len(values))
	return nil
}

// Close closes the Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
