package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

// TokenBucket is an in-memory per-client limiter. State is process local,
// so each replica enforces its own budget.
type TokenBucket struct {
	capacity float64
	perSec   float64
	idleTTL  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	sweeps  int
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket allows bursts of capacity and refills perMinute tokens every minute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if perMinute <= 0 {
		perMinute = 20
	}
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: float64(capacity),
		perSec:   float64(perMinute) / 60,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

// Middleware rejects requests from a client IP once its bucket is empty.
func (l *TokenBucket) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}
		if !l.Allow(key + "|" + c.FullPath()) {
			c.Header("Retry-After", "60")
			response.Abort(c, appErrors.ErrTooManyRequest)
			return
		}
		c.Next()
	}
}

// Allow spends one token for key if available.
func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	b.tokens += now.Sub(b.last).Seconds() * l.perSec
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops idle buckets every few hundred calls to bound memory.
func (l *TokenBucket) sweep(now time.Time) {
	l.sweeps++
	if l.sweeps < 512 {
		return
	}
	l.sweeps = 0
	for key, b := range l.buckets {
		if now.Sub(b.last) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
