package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raine/product-attributes/internal/vision"
)

const redisKeyPrefix = "vision:"

// RedisOpts configures a RedisStore.
type RedisOpts struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore caches normalized vision signals in Redis with an expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ vision.SignalStore = (*RedisStore)(nil)

// NewRedisStore creates a store. The connection is established lazily; use
// Ping to verify it.
func NewRedisStore(opts RedisOpts) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client, ttl: opts.TTL}
}

// Ping checks the server connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetSignals retrieves cached signals. Returns nil, nil on a miss.
func (s *RedisStore) GetSignals(ctx context.Context, imageHash string) (*vision.Signals, error) {
	data, err := s.client.Get(ctx, redisKey(imageHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}
	return decodeSignals(data)
}

// SetSignals stores signals with the configured TTL. A zero TTL never expires.
func (s *RedisStore) SetSignals(ctx context.Context, imageHash string, signals *vision.Signals) error {
	data, err := encodeSignals(signals)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(imageHash), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache vision signals: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(imageHash string) string {
	return redisKeyPrefix + imageHash
}

func encodeSignals(signals *vision.Signals) ([]byte, error) {
	data, err := json.Marshal(signals)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signals: %w", err)
	}
	return data, nil
}

func decodeSignals(data []byte) (*vision.Signals, error) {
	var signals vision.Signals
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("failed to decode cached signals: %w", err)
	}
	return &signals, nil
}
