package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	checkinsvc "wedding-invitation/internal/application/checkin"
	"wedding-invitation/internal/application/guests"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckinTest(t *testing.T) (*fiber.App, *guests.Service) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	g := &guests.Service{DB: db}
	h := &Handlers{Service: &checkinsvc.Service{DB: db, Guests: g, QueryParam: "to"}}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Post("/scan", h.Scan)
	app.Post("/manual", h.Manual)
	app.Get("/stats", h.Stats)
	return app, g
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestScan_URLPayload(t *testing.T) {
	app, g := setupCheckinTest(t)
	_, err := g.Create(context.Background(), guests.CreateInput{GuestName: "Budi Santoso"})
	require.NoError(t, err)

	code, out := call(t, app, "POST", "/scan", map[string]string{"payload": "https://wedding.example/?to=budi-santoso"})
	require.Equal(t, fiber.StatusOK, code, out)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "budi-santoso", data["slug"])
	guest := data["guest"].(map[string]interface{})
	assert.Equal(t, "QR Scanner", guest["checked_in_by"])

	code, out = call(t, app, "POST", "/scan", map[string]string{"payload": "budi-santoso"})
	assert.Equal(t, fiber.StatusConflict, code)
	details := out["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "QR Scanner", details["checked_in_by"])
}

func TestScan_Unresolvable(t *testing.T) {
	app, _ := setupCheckinTest(t)
	code, _ := call(t, app, "POST", "/scan", map[string]string{"payload": "https://wedding.example/?foo=bar"})
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = call(t, app, "POST", "/scan", map[string]string{"payload": "nobody"})
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = call(t, app, "POST", "/scan", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestManualAndStats(t *testing.T) {
	app, g := setupCheckinTest(t)
	ctx := context.Background()
	a, err := g.Create(ctx, guests.CreateInput{GuestName: "Andi"})
	require.NoError(t, err)
	_, err = g.Create(ctx, guests.CreateInput{GuestName: "Bayu"})
	require.NoError(t, err)

	code, _ := call(t, app, "POST", "/manual", map[string]interface{}{"guest_id": 0})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := call(t, app, "POST", "/manual", map[string]interface{}{"guest_id": a.ID, "check_in_notes": "came early"})
	require.Equal(t, fiber.StatusOK, code, out)
	guest := out["data"].(map[string]interface{})["guest"].(map[string]interface{})
	assert.Equal(t, "Manual Entry", guest["checked_in_by"])

	code, out = call(t, app, "GET", "/stats", nil)
	require.Equal(t, fiber.StatusOK, code)
	st := out["data"].(map[string]interface{})
	assert.Equal(t, float64(2), st["total_guests"])
	assert.Equal(t, float64(1), st["checked_in"])
	assert.Equal(t, float64(50), st["check_in_rate"])
	assert.Len(t, st["recent_check_ins"], 1)
}
