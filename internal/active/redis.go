package active

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"session-control/internal/session"
)

// ErrRegistryUnavailable wraps Redis failures on registry operations.
var ErrRegistryUnavailable = fmt.Errorf("active registry unavailable")

const keyPrefix = "active:"

// acquireScript performs the check-then-set in one atomic EVAL: read
// the current entry, EXISTS-check its backing session record, and
// either refuse or overwrite. The entry carries the session TTL as a
// garbage backstop; liveness is decided by the record, not the TTL.
const acquireScript = `
local cur = redis.call("GET", KEYS[1])
if cur and redis.call("EXISTS", ARGV[3] .. cur) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`

var acquireLua = redis.NewScript(acquireScript)

// RedisRegistry is the shared registry for multi-instance deployments.
// It lives in the same Redis as the RedisStore so the Lua compare can
// see session keys.
type RedisRegistry struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRegistry builds a registry whose entries expire after ttl,
// which should match the session TTL.
func NewRedisRegistry(client redis.UniversalClient, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) key(userID string) string {
	return keyPrefix + userID
}

func (r *RedisRegistry) Acquire(ctx context.Context, userID, sessionID string) error {
	res, err := acquireLua.Run(
		ctx,
		r.client,
		[]string{r.key(userID)},
		sessionID,
		r.ttl.Milliseconds(),
		session.KeyPrefix,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	if res == 0 {
		return ErrAlreadyActive
	}
	return nil
}

func (r *RedisRegistry) Release(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}
