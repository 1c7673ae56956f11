package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vintageCRM/business/run"
)

// releaseScript deletes the lock key only while it still holds the
// caller's token, so a holder whose TTL expired can never release the
// next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockRepository is the redis-backed per-tenant run lock. The TTL caps
// how long a crashed run can block its tenant.
type RunLockRepository struct {
	client *redis.Client
}

var _ run.Lock = (*RunLockRepository)(nil)

func NewRunLockRepository(client *redis.Client) *RunLockRepository {
	return &RunLockRepository{
		client: client,
	}
}

func (r *RunLockRepository) Acquire(ctx context.Context, tenantCode string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey(tenantCode), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (r *RunLockRepository) Release(ctx context.Context, tenantCode, token string) error {
	err := releaseScript.Run(ctx, r.client, []string{lockKey(tenantCode)}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release run lock: %w", err)
	}

	return nil
}

func lockKey(tenantCode string) string {
	// key format: "run_lock:{tenant_code}"
	return fmt.Sprintf("run_lock:%s", tenantCode)
}
