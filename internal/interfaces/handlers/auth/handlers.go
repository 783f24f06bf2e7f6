package auth

import (
	"strconv"

	authsvc "wedding-invitation/internal/application/auth"
	usersvc "wedding-invitation/internal/application/user"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
	Users   *usersvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// Login POST /api/v1/auth/login: authenticate, start a fresh session, track it under user_sessions:<id>.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, authsvc.ErrCredentialsRequired)
	}
	user, err := h.Service.Login(c.UserContext(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			log.Info().Str("username", req.Username).Str("ip", c.IP()).Msg("login rejected")
		}
		return response.FromError(c, err)
	}

	sessionID := middleware.RegenerateSessionID(c)
	userID := strconv.FormatUint(uint64(user.ID), 10)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   userID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	})

	if h.Rdb == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.SAdd(c.UserContext(), middleware.UserSessionsPrefix+userID, sessionID).Err(); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to track session")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SessionCookieValue(sessionID, h.Config.Secret)
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"user": authsvc.SessionUserShape{
			UserID:   userID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		if middleware.GetSessionID(c) == "" {
			log.Debug().Bool("cookie_present", c.Cookies(middleware.SessionCookieName) != "").
				Msg("auth/me: no session")
		}
		return response.FromError(c, err)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: SRem user_sessions:<id>, Del the session key, clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	if h.Rdb != nil && sessionID != "" {
		ctx := c.UserContext()
		if user, ok := middleware.CurrentUser(c); ok {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+user.UserID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword POST /api/v1/auth/forgot-password: same answer whether or not the email is known.
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Email == "" {
		return response.FromError(c, apperr.ValidationField("email", "Email is required"))
	}
	if err := h.Users.RequestReset(c.UserContext(), req.Email); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "If that email is registered, a reset link has been sent", nil, nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Token == "" || req.NewPassword == "" {
		return response.FromError(c, apperr.Validation("Token and new password are required"))
	}
	if err := h.Users.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Password has been reset", nil, nil)
}
