package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/metrics"
)

// Metrics records request counts and latency labelled by route pattern, so
// ids in the path do not explode label cardinality.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.RequestInProgress.Inc()
		defer metrics.RequestInProgress.Dec()

		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		status := strconv.Itoa(c.Response().StatusCode())

		metrics.RequestCounter.WithLabelValues(status, c.Method(), route).Inc()
		metrics.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

// RateLimit caps requests per client IP per minute. A non-positive limit
// disables it.
func RateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			metrics.RateLimiterRejections.Inc()
			return apperror.ErrRateLimited
		},
	})
}
