package middleware

import (
	"strings"

	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string // exact matches, e.g. SITE_URL
	AllowedSuffix  string
	DevPassword    string
}

// CORS allows listed origins, origins ending with AllowedSuffix, or requests
// with the correct dev-password header. Credentials allowed.
func CORS(cfg CORSConfig) fiber.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// Same-origin or non-browser clients.
		if origin == "" {
			return c.Next()
		}
		lower := strings.ToLower(origin)
		_, listed := allowed[lower]
		ok := listed ||
			strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") ||
			(cfg.AllowedSuffix != "" && strings.HasSuffix(lower, strings.ToLower(cfg.AllowedSuffix))) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword)
		if !ok {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Headers", "Content-Type, dev-password")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Set("Vary", "Origin")
}
