package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vintageCRM/business/run"
)

// AdvisoryLockRepository serializes runs per tenant with postgres advisory
// locks; it backs deployments that run without redis. Advisory locks are
// session-scoped, so every acquired lock pins its own connection until
// released. The TTL parameter is ignored: the lock lives exactly as long
// as the pinned session.
type AdvisoryLockRepository struct {
	db *sql.DB

	mu   sync.Mutex
	held map[string]*heldLock
}

type heldLock struct {
	conn *sql.Conn
	key  int64
}

var _ run.Lock = (*AdvisoryLockRepository)(nil)

func NewAdvisoryLockRepository(db *gorm.DB) (*AdvisoryLockRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql db: %w", err)
	}

	return &AdvisoryLockRepository{
		db:   sqlDB,
		held: make(map[string]*heldLock),
	}, nil
}

func (r *AdvisoryLockRepository) Acquire(ctx context.Context, tenantCode string, _ time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	key := advisoryKey(tenantCode)
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to pin connection for advisory lock: %w", err)
	}

	var ok bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok); err != nil {
		_ = conn.Close()
		return "", false, fmt.Errorf("failed to try advisory lock: %w", err)
	}
	if !ok {
		_ = conn.Close()
		return "", false, nil
	}

	token := uuid.NewString()
	r.mu.Lock()
	r.held[token] = &heldLock{conn: conn, key: key}
	r.mu.Unlock()

	return token, true, nil
}

// Release unlocks on the same pinned session and returns the connection
// to the pool. Unknown tokens are a no-op.
func (r *AdvisoryLockRepository) Release(ctx context.Context, _ string, token string) error {
	r.mu.Lock()
	lock, ok := r.held[token]
	delete(r.held, token)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	defer func() { _ = lock.conn.Close() }()
	if _, err := lock.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lock.key); err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}

	return nil
}

func advisoryKey(tenantCode string) int64 {
	h := fnv.New64a()
	h.Write([]byte("run_lock:" + tenantCode))

	return int64(h.Sum64())
}
