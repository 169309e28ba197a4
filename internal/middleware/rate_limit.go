package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cardfile/cardfile/internal/ratelimit"
)

// RateLimit bounds request rates on a route, keyed by (client IP, route).
// Every response on the route carries the limit metadata; denials add
// Retry-After. A limiter error fails open: an outage of the counter backend
// must not reject traffic.
func RateLimit(limiter ratelimit.Limiter, route string, window time.Duration, max int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		key := route + ":" + c.IP()
		res, err := limiter.Check(c.UserContext(), key, window, max)
		if err != nil {
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			c.Set("Retry-After", strconv.Itoa(res.RetryAfter))
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}

		return c.Next()
	}
}
