package middleware

import (
	"wedding-invitation/internal/pkg/ratelimit"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RateLimit rejects a client once l refuses its ip+route key.
func RateLimit(l ratelimit.Limiter, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil {
			return c.Next()
		}
		key := c.IP() + ":" + c.Route().Path
		if !l.Allow(key) {
			Logger(c).Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("rate limited")
			return response.Error(c, message, fiber.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}
