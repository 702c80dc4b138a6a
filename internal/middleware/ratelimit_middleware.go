package middleware

import (
	"net/http"
	"strconv"

	"tasksphere/internal/redis"
	"tasksphere/internal/services"
	"tasksphere/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthRateLimitMiddleware throttles credential endpoints by client IP,
// applied before any authentication runs.
func AuthRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis being down should not lock everyone out.
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.RateLimitedResponse{
				Error:          "rate limit exceeded",
				Code:           "RATE_LIMITED",
				RetryAfterSecs: int64(result.ResetIn.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// WriteRateLimitMiddleware throttles mutations per authenticated user.
// Must run after AuthMiddleware.
func WriteRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := services.UserFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.AllowWrite(c.Request.Context(), strconv.FormatInt(u.ID, 10))
		if err != nil {
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.RateLimitedResponse{
				Error:          "write rate limit exceeded",
				Code:           "RATE_LIMITED",
				RetryAfterSecs: int64(result.ResetIn.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
