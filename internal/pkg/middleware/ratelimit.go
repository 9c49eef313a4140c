package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/internal/pkg/ratelimit"
)

// RateLimit answers 429 once the client IP used up its window. A failing
// limiter backend lets the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	if keyFunc == nil {
		keyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		ok, err := limiter.Allow(c.UserContext(), scope+":"+keyFunc(c))
		if err != nil {
			log.Warnw("rate limiter unavailable", "scope", scope, "error", err)
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
