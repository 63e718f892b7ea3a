package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/botutils/pkg/ports"
)

const keyPrefix = "botutils:state:"

// StateStorage implements StateStorage using Redis
type StateStorage struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewStateStorage creates a new Redis state storage.
// A zero ttl stores keys without expiry.
func NewStateStorage(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StateStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateStorage{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Save persists state under key (ports.StateStorage interface)
func (s *StateStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, getStateKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	s.logger.Debug("state saved",
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return nil
}

// Load retrieves state for a key (ports.StateStorage interface)
func (s *StateStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, getStateKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ports.ErrStateNotFound, key)
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return data, nil
}

// Delete removes state for a key (ports.StateStorage interface)
func (s *StateStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, getStateKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	s.logger.Debug("state deleted", zap.String("key", key))

	return nil
}

// Exists checks if state exists for a key (ports.StateStorage interface)
func (s *StateStorage) Exists(ctx context.Context, key string) (bool, error) {
	result, err := s.client.Exists(ctx, getStateKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return result > 0, nil
}

// SetTTL sets a time-to-live for state data (ports.StateStorage interface)
func (s *StateStorage) SetTTL(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, getStateKey(key), ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrStateNotFound, key)
	}

	return nil
}

// List returns all stored keys (ports.StateStorage interface)
func (s *StateStorage) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, keyPrefix))
		}

		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// NewClient builds a Redis client for the table-style state store.
// A non-empty connection string wins over the discrete options.
func NewClient(connectionString string, opts *redis.Options) (*redis.Client, error) {
	if opts == nil {
		opts = &redis.Options{}
	}
	if connectionString == "" {
		return redis.NewClient(opts), nil
	}

	parsed, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid storage connection string: %w", err)
	}
	parsed.PoolSize = opts.PoolSize
	parsed.MinIdleConns = opts.MinIdleConns
	parsed.MaxRetries = opts.MaxRetries
	parsed.DialTimeout = opts.DialTimeout
	parsed.ReadTimeout = opts.ReadTimeout
	parsed.WriteTimeout = opts.WriteTimeout

	return redis.NewClient(parsed), nil
}

// getStateKey returns the Redis key for a state entry
func getStateKey(key string) string {
	return keyPrefix + key
}
