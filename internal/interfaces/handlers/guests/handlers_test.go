package guests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	guestsvc "wedding-invitation/internal/application/guests"
	statssvc "wedding-invitation/internal/application/stats"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGuestsTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	h := &Handlers{
		Service: &guestsvc.Service{DB: db, Now: func() time.Time { return now }},
		Stats:   &statssvc.Service{DB: db},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/guest/:slug", h.GetBySlug)
	admin := app.Group("/admin", func(c *fiber.Ctx) error {
		middleware.SetSessionUser(c, middleware.SessionUser{UserID: "1", Username: "ayu", FullName: "Ayu Lestari", Role: constants.Admin})
		return c.Next()
	})
	admin.Get("/guests/stats", h.GetStats)
	admin.Get("/guests", h.List)
	admin.Post("/guests", h.Create)
	admin.Get("/guests/:id", h.Get)
	admin.Put("/guests/:id", h.Update)
	admin.Delete("/guests/:id", h.Delete)
	admin.Post("/guests/:id/check-in", h.CheckIn)
	admin.Post("/guests/:id/mark-sent", h.MarkSent)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func guestOf(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "data missing: %v", out)
	g, ok := data["guest"].(map[string]interface{})
	require.True(t, ok, "guest missing: %v", out)
	return g
}

func TestCreateAndGetBySlug(t *testing.T) {
	app, _ := setupGuestsTest(t)

	code, out := do(t, app, "POST", "/admin/guests", map[string]interface{}{
		"guest_name": "Budi Santoso", "guest_category": "family", "max_guests": 4,
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	g := guestOf(t, out)
	assert.Equal(t, "budi-santoso", g["guest_slug"])
	assert.Equal(t, float64(4), g["max_guests"])

	code, out = do(t, app, "GET", "/guest/budi-santoso", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(1), guestOf(t, out)["open_count"])

	code, out = do(t, app, "GET", "/guest/budi-santoso", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(2), guestOf(t, out)["open_count"])
}

func TestGetBySlug_UnknownHasFallbackName(t *testing.T) {
	app, db := setupGuestsTest(t)
	code, out := do(t, app, "GET", "/guest/keluarga-pak-rt", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	details := out["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "Keluarga Pak Rt", details["fallback_name"])

	var count int64
	require.NoError(t, db.Model(&domain.Guest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_Validation(t *testing.T) {
	app, _ := setupGuestsTest(t)
	code, _ := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "  "})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari", "max_guests": 21})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari", "guest_category": "vip"})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestListFiltersAndPaging(t *testing.T) {
	app, _ := setupGuestsTest(t)
	for _, name := range []string{"Andi", "Bayu", "Citra"} {
		code, _ := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": name, "guest_category": "friend"})
		require.Equal(t, fiber.StatusCreated, code)
	}
	code, _ := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Dewi", "guest_category": "colleague"})
	require.Equal(t, fiber.StatusCreated, code)
	do(t, app, "GET", "/guest/andi", nil)

	code, out := do(t, app, "GET", "/admin/guests?category=friend&limit=2", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 2)
	meta := out["metadata"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["total"])
	assert.Equal(t, float64(2), meta["limit"])

	_, out = do(t, app, "GET", "/admin/guests?is_opened=true", nil)
	assert.Len(t, out["data"], 1)

	_, out = do(t, app, "GET", "/admin/guests?search=ewi", nil)
	assert.Len(t, out["data"], 1)

	code, _ = do(t, app, "GET", "/admin/guests?has_rsvp=perhaps", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestUpdateRenamesSlug(t *testing.T) {
	app, _ := setupGuestsTest(t)
	_, out := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari"})
	id := int(guestOf(t, out)["id"].(float64))

	code, out := do(t, app, "PUT", "/admin/guests/"+itoa(id), map[string]interface{}{"guest_name": "Sari Dewi", "notes": "vegetarian"})
	require.Equal(t, fiber.StatusOK, code, out)
	g := guestOf(t, out)
	assert.Equal(t, "sari-dewi", g["guest_slug"])
	assert.Equal(t, "vegetarian", g["notes"])

	code, _ = do(t, app, "PUT", "/admin/guests/999", map[string]interface{}{"notes": "x"})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestCheckIn_DefaultsToSessionUserAndConflicts(t *testing.T) {
	app, _ := setupGuestsTest(t)
	_, out := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari"})
	id := itoa(int(guestOf(t, out)["id"].(float64)))

	code, out := do(t, app, "POST", "/admin/guests/"+id+"/check-in", nil)
	require.Equal(t, fiber.StatusOK, code, out)
	assert.Equal(t, "Ayu Lestari", guestOf(t, out)["checked_in_by"])

	code, out = do(t, app, "POST", "/admin/guests/"+id+"/check-in", map[string]interface{}{"checked_in_by": "Usher"})
	assert.Equal(t, fiber.StatusConflict, code)
	details := out["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "Ayu Lestari", details["checked_in_by"])
	assert.NotEmpty(t, details["checked_in_at"])
}

func TestMarkSentAndDelete(t *testing.T) {
	app, _ := setupGuestsTest(t)
	_, out := do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari"})
	id := itoa(int(guestOf(t, out)["id"].(float64)))

	code, out := do(t, app, "POST", "/admin/guests/"+id+"/mark-sent", map[string]interface{}{"via": "whatsapp"})
	require.Equal(t, fiber.StatusOK, code)
	g := guestOf(t, out)
	assert.Equal(t, true, g["is_sent"])
	assert.Equal(t, "whatsapp", g["sent_via"])

	code, _ = do(t, app, "DELETE", "/admin/guests/"+id, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = do(t, app, "GET", "/admin/guests/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = do(t, app, "GET", "/admin/guests/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestStats(t *testing.T) {
	app, _ := setupGuestsTest(t)
	do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Sari", "guest_category": "family"})
	do(t, app, "POST", "/admin/guests", map[string]interface{}{"guest_name": "Bayu", "guest_category": "friend"})
	do(t, app, "GET", "/guest/sari", nil)

	code, out := do(t, app, "GET", "/admin/guests/stats", nil)
	require.Equal(t, fiber.StatusOK, code)
	data := out["data"].(map[string]interface{})
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_invitations"])
	assert.Equal(t, float64(1), summary["total_opened"])
	assert.Equal(t, float64(50), summary["opened_percentage"])
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
