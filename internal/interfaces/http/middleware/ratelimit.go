package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"keygate/internal/shared/utils"
)

// IPRateLimiter is a Redis-backed fixed-window counter per client IP,
// guarding the unauthenticated write endpoints. Per-key metered limiting
// lives in the access handler where the key is known.
type IPRateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
}

func NewIPRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
	}
}

// Limit enforces the per-IP budget. Redis being unreachable fails open so
// a cache outage never takes the API down with it.
func (rl *IPRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		windowBucket := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("ratelimit:ip:%s:%d", clientIP, windowBucket)

		ctx := context.Background()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
