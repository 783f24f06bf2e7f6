package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	TraceIDHeader = "X-Trace-Id"
	traceIDLocal  = "trace_id"
)

// Tracing tags the request with a trace ID (a well-formed incoming X-Trace-Id
// is kept), echoes it back and puts a logger carrying it on the user context.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(TraceIDHeader, traceID)
		l := log.With().Str("trace_id", traceID).Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}

// Logger returns the request logger set by Tracing, or the global logger.
func Logger(c *fiber.Ctx) *zerolog.Logger {
	l := zerolog.Ctx(c.UserContext())
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
