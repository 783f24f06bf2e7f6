package middleware

import (
	"wedding-invitation/internal/pkg/constants"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireCapability checks the session role against the capability table.
// No session user is 401; a role without the capability is 403.
func RequireCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !constants.HasCapability(user.Role, capability) {
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser decodes the session user.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return SessionUser{}, false
	}
	u := SessionUser{
		UserID:   str(m["user_id"]),
		Username: str(m["username"]),
		FullName: str(m["full_name"]),
		Role:     str(m["role"]),
	}
	if u.UserID == "" {
		return SessionUser{}, false
	}
	return u, true
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
