// Package ratelimiter throttles requests per caller with token buckets.
package ratelimiter

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds the number of callers tracked at once.
const DefaultMaxKeys = 10_000

// KeyedLimiter keeps one token bucket per key (a user DN for logon
// throttling).
//
// Buckets live in an LRU so a flood of distinct callers cannot grow memory
// without bound. An evicted caller comes back with a full bucket.
//
// Keys are compared case insensitively.
//
// Thread safety:
// All methods are safe for concurrent use.
type KeyedLimiter struct {
	limit     rate.Limit
	burst     int
	unlimited bool

	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// New creates a KeyedLimiter.
//
// Parameters:
//   - requestsPerSecond: Sustained rate per key. Zero disables limiting.
//   - burst: Bucket capacity per key. Zero means one request at a time.
//   - maxKeys: Number of keys tracked. Zero means DefaultMaxKeys.
func New(requestsPerSecond, burst uint, maxKeys int) (*KeyedLimiter, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, err
	}
	if burst == 0 {
		burst = 1
	}
	return &KeyedLimiter{
		limit:     rate.Limit(requestsPerSecond),
		burst:     int(burst),
		unlimited: requestsPerSecond == 0,
		limiters:  cache,
	}, nil
}

// Allow reports whether a request for key may proceed now, consuming a token
// when it may.
func (l *KeyedLimiter) Allow(key string) bool {
	if l == nil || l.unlimited {
		return true
	}
	return l.get(key).Allow()
}

// Wait blocks until key has a token or ctx is done.
func (l *KeyedLimiter) Wait(ctx context.Context, key string) error {
	if l == nil || l.unlimited {
		return ctx.Err()
	}
	return l.get(key).Wait(ctx)
}

// Len returns the number of keys currently tracked.
func (l *KeyedLimiter) Len() int {
	if l == nil {
		return 0
	}
	return l.limiters.Len()
}

func (l *KeyedLimiter) get(key string) *rate.Limiter {
	key = strings.ToLower(key)

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(key, limiter)
	return limiter
}
