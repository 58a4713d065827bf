package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/ratelimit"
)

// RateLimit returns middleware that admits requests under the given limit,
// keyed by the caller's API key (or address when no key is bound).  It is
// registered after the auth middleware, so an invalid credential yields a
// 401 before admission is ever considered; only authenticated callers can
// see a 429.
//
// When the backing store errors the request is admitted and the failure
// logged: admission control must not turn a counter outage into an outage
// of the API itself.  A nil limiter disables the check entirely.
func RateLimit(limiter *ratelimit.Limiter, limit ratelimit.Limit) echo.MiddlewareFunc {
	if limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(c)
			d, err := limiter.Allow(c.Request().Context(), key, limit)
			if err != nil {
				c.Logger().Warnf("ratelimit: store error for key=%s: %v", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Count))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				return apperr.TooManyRequests("RATE_LIMIT_EXCEEDED", "rate limit exceeded, please try again later")
			}
			return next(c)
		}
	}
}
