package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"pos-backend/internal/cart"
	"pos-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pos:cart:"

// RedisStore keeps carts as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedis connects to redisURL and verifies it with a ping.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration, logger *log.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisWithClient(client, ttl, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger *log.Logger) *RedisStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping is used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		s.logger.Printf("cart store: get id=%s error=%v", id, err)
		return nil, err
	}
	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+c.ID, data, s.ttl).Err(); err != nil {
		s.logger.Printf("cart store: save id=%s error=%v", c.ID, err)
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		s.logger.Printf("cart store: delete id=%s error=%v", id, err)
		return err
	}
	return nil
}
