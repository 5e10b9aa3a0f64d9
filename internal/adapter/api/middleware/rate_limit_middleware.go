package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
)

const actionHTTPRequest = "http_request"

// RateLimit throttles requests per client IP using the shared token-bucket
// limiter. A nil limiter disables throttling.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			ip := c.RealIP()
			allowed, retryAfter := limiter.Allow(ip, actionHTTPRequest)
			if !allowed {
				logger.Warn("rate limit exceeded for %s on %s", ip, c.Path())
				seconds := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				appErr := errors.TooManyRequests("Rate limit exceeded")
				appErr.Details = map[string]int{"retryAfter": seconds}
				return appErr
			}

			return next(c)
		}
	}
}
