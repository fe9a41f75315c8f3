package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "vidmind:session:"

// RedisConfig configures RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// KeyPrefix namespaces session keys; defaults to "vidmind:session:".
	KeyPrefix string
}

// RedisStore keeps results as JSON values that expire after the TTL, so
// sessions survive restarts and can be shared by several server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig, log *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	log = log.With("component", "session", "backend", "redis")
	log.Info("session store initialized", "addr", cfg.Addr, "db", cfg.DB)

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		prefix: prefix,
		log:    log,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Result, error) {
	val, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		s.log.Error("session get failed", "session", id, "error", err)
		return Result{}, fmt.Errorf("session get: %w", err)
	}

	var res Result
	if err := json.Unmarshal(val, &res); err != nil {
		return Result{}, fmt.Errorf("decode session: %w", err)
	}
	return res, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, res Result) error {
	res.UpdatedAt = time.Now()
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, data, s.ttl).Err(); err != nil {
		s.log.Error("session put failed", "session", id, "error", err)
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		s.log.Error("session delete failed", "session", id, "error", err)
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
