package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/response"
)

type slidingWindowCounter struct {
	mu         sync.Mutex
	timestamps []int64
}

var rateLimiterStore sync.Map

// RateLimitByIP applies a sliding-window limit keyed on the client
// address. Used on the public scan endpoints, which carry no auth.
func RateLimitByIP(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()

		entryAny, _ := rateLimiterStore.LoadOrStore(key, &slidingWindowCounter{
			timestamps: make([]int64, 0, limit),
		})
		entry := entryAny.(*slidingWindowCounter)

		now := time.Now().UnixNano()
		cutoff := now - window.Nanoseconds()

		entry.mu.Lock()
		next := entry.timestamps[:0]
		for _, ts := range entry.timestamps {
			if ts > cutoff {
				next = append(next, ts)
			}
		}
		entry.timestamps = next

		if len(entry.timestamps) >= limit {
			entry.mu.Unlock()
			response.Fail(c, 429, "too many requests")
			c.Abort()
			return
		}

		entry.timestamps = append(entry.timestamps, now)
		entry.mu.Unlock()

		c.Next()
	}
}
