package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type localLock struct {
	token   string
	expires time.Time
}

// LockRepository hands out short-lived exclusive locks. With a Redis client
// the lock spans every API instance; without one it only guards this process.
type LockRepository struct {
	client *redis.Client
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]localLock
	now   func() time.Time
}

// NewLockRepository constructs a lock repository. client may be nil.
func NewLockRepository(client *redis.Client, logger *zap.Logger) *LockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockRepository{client: client, logger: logger, local: make(map[string]localLock), now: time.Now}
}

// Acquire takes key for ttl. It returns the token needed to release the
// lock and false when someone else holds it.
func (r *LockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	var ok bool
	if r.client == nil {
		ok = r.acquireLocal(key, token, ttl)
	} else {
		var err error
		ok, err = r.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("redis setnx %s: %w", key, err)
		}
	}
	if !ok {
		r.logger.Debug("lock already held", zap.String("key", key))
	}
	return token, ok, nil
}

// Release frees key if it is still held with token.
func (r *LockRepository) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		r.releaseLocal(key, token)
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && !isNilReply(err) {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

func (r *LockRepository) acquireLocal(key, token string, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if held, ok := r.local[key]; ok && now.Before(held.expires) {
		return false
	}
	r.local[key] = localLock{token: token, expires: now.Add(ttl)}
	return true
}

func (r *LockRepository) releaseLocal(key, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if held, ok := r.local[key]; ok && held.token == token {
		delete(r.local, key)
	}
}

// Close releases the underlying Redis connection if present.
func (r *LockRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func isNilReply(err error) bool {
	return errors.Is(err, redis.Nil)
}
