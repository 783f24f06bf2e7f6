package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "wedding-invitation/internal/application/auth"
	usersvc "wedding-invitation/internal/application/user"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type authEnv struct {
	app *fiber.App
	rdb *redis.Client
	db  *gorm.DB
}

func setupAuthTest(t *testing.T) *authEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	email := "ayu@example.com"
	require.NoError(t, db.Create(&domain.AdminUser{
		Username: "ayu", PasswordHash: string(hash), FullName: "Ayu Lestari", Email: &email,
		Role: "admin", IsActive: true,
	}).Error)

	cfg := middleware.SessionConfig{Secret: testSecret}
	h := &Handlers{
		Service: &authsvc.Service{DB: db},
		Users:   &usersvc.Service{DB: db, Rdb: rdb, SiteURL: "https://ayu-budi.example"},
		Rdb:     rdb,
		Config:  cfg,
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.Session(cfg, rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	app.Post("/forgot-password", h.ForgotPassword)
	app.Post("/reset-password", h.ResetPassword)
	return &authEnv{app: app, rdb: rdb, db: db}
}

func (e *authEnv) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_MissingCredentials(t *testing.T) {
	env := setupAuthTest(t)
	resp := env.do(t, "POST", "/login", map[string]string{"username": "ayu"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupAuthTest(t)
	resp := env.do(t, "POST", "/login", map[string]string{"username": "ayu", "password": "nope"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
}

func TestLoginMeLogout(t *testing.T) {
	env := setupAuthTest(t)

	resp := env.do(t, "POST", "/login", map[string]string{"username": "ayu", "password": "password123"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	members, err := env.rdb.SMembers(context.Background(), middleware.UserSessionsPrefix+"1").Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	resp = env.do(t, "GET", "/me", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me struct {
		Data struct {
			User authsvc.SessionUserShape `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "ayu", me.Data.User.Username)
	assert.Equal(t, "admin", me.Data.User.Role)

	resp = env.do(t, "DELETE", "/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	exists, err := env.rdb.Exists(context.Background(), middleware.SessionRedisPrefix+members[0]).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	resp = env.do(t, "GET", "/me", nil, cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_NoSession(t *testing.T) {
	env := setupAuthTest(t)
	resp := env.do(t, "GET", "/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := setupAuthTest(t)

	resp := env.do(t, "POST", "/forgot-password", map[string]string{"email": "nobody@example.com"}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, "POST", "/forgot-password", map[string]string{"email": "AYU@example.com"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var row domain.PasswordResetToken
	require.NoError(t, env.db.First(&row).Error)

	resp = env.do(t, "POST", "/reset-password", map[string]string{"token": row.Token, "newPassword": "short"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/reset-password", map[string]string{"token": row.Token, "newPassword": "a-much-longer-one"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, "POST", "/reset-password", map[string]string{"token": row.Token, "newPassword": "another-long-one"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/login", map[string]string{"username": "ayu", "password": "a-much-longer-one"}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
