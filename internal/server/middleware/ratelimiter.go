package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/redis"
)

// RateLimiter throttles the worker endpoints per session id over a one
// minute window. It is only active when Redis is configured.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	logger logging.Logger
}

func NewRateLimiterWithClient(redisClient *redis.Client, limit int, logger logging.Logger) (*RateLimiter, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		logger: logger,
	}, nil
}

const rateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
    redis.call("EXPIRE", key, window)
end

local ttl = redis.call("TTL", key)

if current > limit then
    return {current, 0, ttl}
else
    return {current, limit - current, ttl}
end
`

// GinMiddleware enforces the limit for the request's session id. On any
// Redis failure the request is let through; throttling is best effort.
func (rl *RateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		if sessionID == "" || rl.limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", sessionID)
		result, err := rl.redis.Eval(c.Request.Context(), rateLimitScript, []string{key}, rl.limit, 60)
		if err != nil {
			rl.logger.Errorf("Failed to evaluate rate limit script: %v", err)
			c.Next()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) != 3 {
			rl.logger.Error("Invalid response from rate limit script")
			c.Next()
			return
		}

		current := values[0].(int64)
		remaining := values[1].(int64)
		reset := values[2].(int64)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if current > int64(rl.limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
