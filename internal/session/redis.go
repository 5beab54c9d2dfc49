package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in Redis. The active-session
// registry relies on this prefix to cross-check records, so both sides
// must agree on it.
const KeyPrefix = "sess:"

// RedisStore persists records in a shared Redis cache with a TTL set at
// write time. Transient network failures propagate as
// ErrStoreUnavailable, never as silent empty sessions.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(sessionID string) string {
	return KeyPrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt session blob: %v", ErrStoreUnavailable, err)
	}
	rec.SessionID = sessionID

	// Redis TTL is authoritative, but a record whose stored expiry has
	// passed while the key lingers must still read as absent.
	if rec.Expired(time.Now()) {
		if err := s.Destroy(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return &rec, nil
}

func (s *RedisStore) Set(ctx context.Context, rec *Record, ttl time.Duration) error {
	if rec.SessionID == "" || rec.UserID == "" {
		return errors.New("session: record missing session id or user id")
	}
	if ttl <= 0 {
		return errors.New("session: ttl must be positive")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal record: %w", err)
	}

	if err := s.client.Set(ctx, s.key(rec.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping reports point-in-time backend availability.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
