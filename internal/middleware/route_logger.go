package middleware

import (
	"errors"
	"time"

	"wedding-invitation/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Polled by uptime checks; logged at debug.
var quietPaths = map[string]bool{
	"/":            true,
	"/health/json": true,
}

// RouteLogger writes one line per request once the handler chain returns.
// Errors have not reached the ErrorHandler yet, so their status is derived here.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperr.StatusCode(err)
			}
		}

		l := Logger(c)
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error().Err(err)
		case quietPaths[c.Path()]:
			ev = l.Debug()
		default:
			ev = l.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
		return err
	}
}
