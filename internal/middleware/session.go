package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig for the Redis-backed admin session.
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "wedding.sid"
	SessionRedisPrefix = "session:"
	UserSessionsPrefix = "user_sessions:"
	SessionMaxAge      = 24 * time.Hour

	sessionDataLocal = "session_data"
	sessionIDLocal   = "session_id"
	userLocal        = "user"
)

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ID returns the numeric admin id, or 0 when the session id is malformed.
func (u SessionUser) ID() uint {
	n, err := strconv.ParseUint(u.UserID, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// Session returns a Fiber middleware that loads the session from Redis before
// the handler runs and saves it afterwards. Cookie value is "s:<id>.<signature>".
func Session(cfg SessionConfig, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := parseSessionCookie(c.Cookies(SessionCookieName), cfg.Secret)

		var data map[string]interface{}
		if sessionID != "" && rdb != nil {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session load failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
			// Unknown ids are not adopted; a new one is issued on login.
			sessionID = ""
		}

		c.Locals(sessionDataLocal, data)
		if u, ok := data["user"]; ok {
			c.Locals(userLocal, u)
		} else {
			c.Locals(userLocal, nil)
		}
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if sid, _ := c.Locals(sessionIDLocal).(string); sid != "" && rdb != nil {
			updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
			if len(updated) > 0 {
				b, _ := json.Marshal(updated)
				if err := rdb.Set(context.Background(), SessionRedisPrefix+sid, b, SessionMaxAge).Err(); err != nil {
					log.Warn().Err(err).Msg("session save failed")
				}
			}
		}
		return nil
	}
}

func parseSessionCookie(raw, secret string) string {
	if raw == "" {
		return ""
	}
	raw = strings.TrimPrefix(raw, "s:")
	dot := strings.LastIndex(raw, ".")
	if dot < 0 {
		if secret != "" {
			return ""
		}
		return raw
	}
	id, sig := raw[:dot], raw[dot+1:]
	if secret != "" && !hmac.Equal([]byte(sig), []byte(signSessionID(id, secret))) {
		return ""
	}
	return id
}

func signSessionID(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SessionCookieValue returns the cookie value for id.
func SessionCookieValue(id, secret string) string {
	if secret == "" {
		return "s:" + id
	}
	return "s:" + id + "." + signSessionID(id, secret)
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionUser sets the user in the session and marks session for save.
// Call RegenerateSessionID first.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"user_id":   user.UserID,
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
	}
	c.Locals(sessionDataLocal, data)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID creates a new session ID and sets it in Locals.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears user and session data from Locals; caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
}

// SessionCookieConfig returns cookie options for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
