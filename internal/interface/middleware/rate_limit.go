package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-management-api/pkg/response"
)

// TooManyRequests is the message returned when a limiter rejects a request.
const TooManyRequests = "Too many requests from this IP, please try again later."

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and request path
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// Lua script: atomic INCR + set PEXPIRE on first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// Counter increments the hit count for key within a fixed window and reports
// the count and the time left in the window.
type Counter interface {
	Hit(c *gin.Context, key string, window time.Duration) (count int, reset time.Duration, err error)
}

// RedisCounter shares limits across instances.
type RedisCounter struct {
	RDB *redis.Client
}

func (r RedisCounter) Hit(c *gin.Context, key string, window time.Duration) (int, time.Duration, error) {
	ctx := c.Request.Context()
	countI, err := incrExpireScript.Run(ctx, r.RDB, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	ttl, _ := r.RDB.PTTL(ctx, key).Result()
	return toInt(countI), ttl, nil
}

// MemoryCounter keeps fixed windows in process memory; limits are per instance.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now, buckets: make(map[string]*bucket)}
}

func (m *MemoryCounter) Hit(_ *gin.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || !now.Before(b.windowEnd) {
		if len(m.buckets) > 10000 {
			m.sweepLocked(now)
		}
		b = &bucket{windowEnd: now.Add(window)}
		m.buckets[key] = b
	}
	b.count++
	return b.count, b.windowEnd.Sub(now), nil
}

func (m *MemoryCounter) sweepLocked(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.windowEnd) {
			delete(m.buckets, k)
		}
	}
}

// NewCounter picks Redis when a client is configured, process memory otherwise.
func NewCounter(rdb *redis.Client) Counter {
	if rdb != nil {
		return RedisCounter{RDB: rdb}
	}
	return NewMemoryCounter()
}

// RateLimit with:
// - fixed window counter (atomic in redis)
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass & method skip
func RateLimit(counter Counter, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if counter == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		count, reset, err := counter.Hit(c, keyFn(c), window)
		if err != nil {
			// fail open when the counter is unavailable
			c.Next()
			return
		}
		resetSec := int((reset + time.Second - 1) / time.Second)
		if resetSec < 0 {
			resetSec = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, limit-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > limit {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, TooManyRequests)
			return
		}
		c.Next()
	}
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
