package middleware

import (
	"fmt"
	"time"

	"agrodocs_backend/internal/logger"
	"agrodocs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP and route in a fixed window. Used
// on the credential endpoints to slow brute force attempts.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			// An unavailable limiter must not lock everyone out.
			logger.CtxWithError(ctx, "rate limiter unavailable, allowing request", err, "key", key)
			c.Next()
			return
		}
		if count == 1 {
			if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
				logger.CtxWithError(ctx, "failed to set rate limit window", err, "key", key)
			}
		}
		if count > int64(l.limit) {
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
