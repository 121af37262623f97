package middleware

import (
	"fmt"
	"net/http"

	"marketchat/internal/redis"
	"marketchat/internal/services"
	"marketchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SendRateLimit throttles message sends per user with a Redis fixed window.
// A limiter error fails open: rate limiting is protection, not correctness.
func SendRateLimit(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
			c.Abort()
			return
		}

		result, err := limiter.AllowMessage(c.Request.Context(), userID.String())
		if err != nil {
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			c.Writer.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.ResetIn.Seconds())))
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limited", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}
