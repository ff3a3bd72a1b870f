package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/port/outbound"
	apperrors "github.com/uniedit/invite-server/internal/shared/errors"
	"github.com/uniedit/invite-server/internal/shared/logger"
)

const (
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// RateLimitByUser limits requests per authenticated user, falling back to client IP.
// A nil limiter disables limiting.
func RateLimitByUser(limiter outbound.RateLimiterPort, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := scope + ":ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = scope + ":user:" + userID.String()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Fail open.
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header(RateLimitLimit, strconv.Itoa(limit))
		if !allowed {
			c.Header(RetryAfter, strconv.Itoa(int(window.Seconds())))
			abort(c, apperrors.RateLimited("Too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
