package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisGuard struct {
	client *Client
	ttl    time.Duration
}

// NewRedisGuard holds in-flight locks as redis keys with a TTL, so a crashed
// request cannot hold a record forever.
func NewRedisGuard(client *Client, ttl time.Duration) settlement.Guard {
	return &redisGuard{client: client, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.store.SetNX(ctx, buildKey("inflight", key), token, g.ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (g *redisGuard) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, g.client.store, []string{buildKey("inflight", key)}, token).Err()
}

type memoryLock struct {
	token   string
	expires time.Time
}

type memoryGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	locks map[string]memoryLock
}

// NewMemoryGuard is the single-process in-flight guard.
func NewMemoryGuard(ttl time.Duration) settlement.Guard {
	return newMemoryGuard(ttl, time.Now)
}

func newMemoryGuard(ttl time.Duration, now func() time.Time) *memoryGuard {
	return &memoryGuard{ttl: ttl, now: now, locks: make(map[string]memoryLock)}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if lock, held := g.locks[key]; held && g.live(lock, now) {
		return "", false, nil
	}
	lock := memoryLock{token: uuid.NewString()}
	if g.ttl > 0 {
		lock.expires = now.Add(g.ttl)
	}
	g.locks[key] = lock
	return lock.token, true, nil
}

func (g *memoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lock, held := g.locks[key]; held && lock.token == token {
		delete(g.locks, key)
	}
	return nil
}

func (g *memoryGuard) live(lock memoryLock, now time.Time) bool {
	return lock.expires.IsZero() || now.Before(lock.expires)
}
