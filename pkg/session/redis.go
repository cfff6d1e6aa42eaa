package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/metrics"
)

const redisBackend = "redis"

// RedisStore keeps the credential in Redis under "<key>:<sessionID>".
// The session ID is generated per instance, so a store never sees another
// instance's slot and a restarted process starts unauthenticated.
type RedisStore struct {
	rdb       *redis.Client
	key       string
	sessionID string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisStore creates a store bound to a fresh session slot.
// ttl <= 0 keeps the slot until Clear or Close.
func NewRedisStore(rdb *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		rdb:       rdb,
		key:       normalizeKey(key),
		sessionID: uuid.NewString(),
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *RedisStore) Key() string { return s.key }

// SessionID identifies this store's slot.
func (s *RedisStore) SessionID() string { return s.sessionID }

func (s *RedisStore) slot() string {
	return fmt.Sprintf("%s:%s", s.key, s.sessionID)
}

// Set writes the credential, replacing any previous one.
func (s *RedisStore) Set(ctx context.Context, value string) error {
	if value == "" {
		s.Clear(ctx)
		return nil
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.slot(), value, ttl).Err(); err != nil {
		metrics.IncStoreError(redisBackend, "set")
		return fmt.Errorf("session store set: %w", err)
	}
	return nil
}

// Get reads the credential. Backend failures are logged and read as absent.
func (s *RedisStore) Get(ctx context.Context) (string, bool) {
	val, err := s.rdb.Get(ctx, s.slot()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		metrics.IncStoreError(redisBackend, "get")
		s.logger.Warn("session.store.redis_get_failed",
			zap.String("key", s.key),
			zap.Error(err))
		return "", false
	}
	return val, val != ""
}

// Clear deletes the slot. Backend failures are logged, never returned.
func (s *RedisStore) Clear(ctx context.Context) {
	if err := s.rdb.Del(ctx, s.slot()).Err(); err != nil {
		metrics.IncStoreError(redisBackend, "clear")
		s.logger.Warn("session.store.redis_clear_failed",
			zap.String("key", s.key),
			zap.Error(err))
	}
}

// Close removes the slot so nothing outlives the session.
func (s *RedisStore) Close(ctx context.Context) {
	s.Clear(ctx)
}
