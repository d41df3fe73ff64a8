package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CounterStore counts hits per key inside a fixed window. The memory
// store below is the default; the Redis-backed client satisfies the
// same interface for multi-instance deployments.
type CounterStore interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	store  CounterStore
	window time.Duration
	limit  int
}

func NewRateLimiter(limit int, window time.Duration, store CounterStore) *RateLimiter {
	if store == nil {
		store = NewMemoryCounter()
	}

	return &RateLimiter{
		limit:  limit,
		window: window,
		store:  store,
	}
}

// Middleware enforces the limit for a derived key.

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, err := rl.store.IncrWindow(c.Request.Context(), key, rl.window)

		if err != nil {
			// a broken limiter backend must not take the API down
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again shortly.",
			})
			return
		}

		c.Next()
	}
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by userID if available

func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	// Strip a port if one leaked through.
	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

// MemoryCounter is the single-process CounterStore.

type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		clients: make(map[string]*clientBucket),
	}
}

func (m *MemoryCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]

	if !ok || now.After(b.windowEnd) {
		m.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(window),
		}

		return 1, nil
	}

	b.count++

	return b.count, nil
}
