package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(count, limit int, reset time.Time) Decision {
	return Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		Reset:     reset,
	}
}

type redisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	limit  int
	now    func() time.Time
}

// NewRedisLimiter creates a fixed-window limiter. Keys are
// prefix:key:windowStart and expire with the window.
func NewRedisLimiter(client *redis.Client, prefix string, window time.Duration, limit int) Limiter {
	return &redisLimiter{client: client, prefix: prefix, window: window, limit: limit, now: time.Now}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	start := l.now().Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}
	return decide(int(incr.Val()), l.limit, start.Add(l.window)), nil
}

type memoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	now    func() time.Time
	counts map[string]int
	start  time.Time
}

// NewMemoryLimiter is a single-process fixed-window limiter.
func NewMemoryLimiter(window time.Duration, limit int) Limiter {
	return newMemoryLimiter(window, limit, time.Now)
}

func newMemoryLimiter(window time.Duration, limit int, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{window: window, limit: limit, now: now, counts: map[string]int{}}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := l.now().Truncate(l.window)
	if !start.Equal(l.start) {
		// New window, old counters are dead.
		l.start = start
		l.counts = map[string]int{}
	}
	l.counts[key]++
	return decide(l.counts[key], l.limit, start.Add(l.window)), nil
}
