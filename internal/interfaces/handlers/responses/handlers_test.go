package responses

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	respsvc "wedding-invitation/internal/application/responses"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResponsesTest(t *testing.T, limiter ratelimit.Limiter) *fiber.App {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	h := &Handlers{Service: &respsvc.Service{DB: db, Limiter: limiter}}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Post("/rsvp", h.SubmitRSVP)
	app.Get("/rsvp", h.ListRSVPs)
	app.Post("/wishes", h.SubmitWish)
	app.Get("/wishes", h.ListWishes)
	app.Put("/admin/rsvp/:id", h.UpdateRSVP)
	app.Delete("/admin/rsvp/:id", h.DeleteRSVP)
	app.Delete("/admin/rsvp", h.DeleteRSVPs)
	app.Put("/admin/wishes/:id", h.UpdateWish)
	app.Delete("/admin/wishes/:id", h.DeleteWish)
	app.Delete("/admin/wishes", h.DeleteWishes)
	return app
}

func post(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	return sendJSON(t, app, "POST", path, body)
}

func sendJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSubmitRSVP_CreateThenUpdate(t *testing.T) {
	app := setupResponsesTest(t, nil)

	code, out := post(t, app, "/rsvp", map[string]interface{}{
		"guest_name": "Budi", "attendance": "attending", "guest_count": 2, "message": "See you!",
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	first := out["data"].(map[string]interface{})
	assert.Equal(t, "created", first["action"])

	code, out = post(t, app, "/rsvp", map[string]interface{}{
		"guest_name": "Budi", "attendance": "not_attending",
	})
	require.Equal(t, fiber.StatusOK, code, out)
	second := out["data"].(map[string]interface{})
	assert.Equal(t, "updated", second["action"])
	assert.Equal(t, first["id"], second["id"])

	code, out = send(t, app, httptest.NewRequest("GET", "/rsvp", nil))
	require.Equal(t, fiber.StatusOK, code)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "not_attending", rows[0].(map[string]interface{})["attendance"])
	assert.Equal(t, float64(0), rows[0].(map[string]interface{})["guest_count"])
}

func TestSubmitRSVP_Invalid(t *testing.T) {
	app := setupResponsesTest(t, nil)
	code, _ := post(t, app, "/rsvp", map[string]interface{}{"guest_name": "Budi", "attendance": "maybe"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = post(t, app, "/rsvp", map[string]interface{}{"attendance": "attending"})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestSubmitWish_RateLimited(t *testing.T) {
	app := setupResponsesTest(t, ratelimit.NewMemory(1, time.Minute, 100))
	code, _ := post(t, app, "/wishes", map[string]interface{}{"name": "Sari", "message": "Selamat!"})
	require.Equal(t, fiber.StatusCreated, code)
	code, out := post(t, app, "/wishes", map[string]interface{}{"name": "Sari", "message": "Again"})
	assert.Equal(t, fiber.StatusTooManyRequests, code)
	assert.Equal(t, "error", out["status"])

	_, out = send(t, app, httptest.NewRequest("GET", "/wishes", nil))
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Selamat!", rows[0].(map[string]interface{})["message"])
}

func TestSubmitWish_EscapesMarkup(t *testing.T) {
	app := setupResponsesTest(t, nil)
	code, _ := post(t, app, "/wishes", map[string]interface{}{"name": "<b>Sari</b>", "message": "<script>x</script>"})
	require.Equal(t, fiber.StatusCreated, code)
	_, out := send(t, app, httptest.NewRequest("GET", "/wishes", nil))
	row := out["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "&lt;b&gt;Sari&lt;/b&gt;", row["name"])
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", row["message"])
}

func TestDelete(t *testing.T) {
	app := setupResponsesTest(t, nil)
	_, out := post(t, app, "/wishes", map[string]interface{}{"name": "Sari", "message": "Selamat!"})
	id := out["data"].(map[string]interface{})["id"].(float64)
	_, out = post(t, app, "/rsvp", map[string]interface{}{"guest_name": "Sari", "attendance": "undecided"})
	rid := out["data"].(map[string]interface{})["id"].(float64)

	code, _ := send(t, app, httptest.NewRequest("DELETE", "/admin/wishes/"+ftoa(id), nil))
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = send(t, app, httptest.NewRequest("DELETE", "/admin/wishes/"+ftoa(id), nil))
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = send(t, app, httptest.NewRequest("DELETE", "/admin/rsvp/"+ftoa(rid), nil))
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = send(t, app, httptest.NewRequest("DELETE", "/admin/rsvp/x", nil))
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestUpdateRSVPAndWish(t *testing.T) {
	app := setupResponsesTest(t, nil)
	_, out := post(t, app, "/rsvp", map[string]interface{}{"guest_name": "Budi", "attendance": "undecided"})
	rid := out["data"].(map[string]interface{})["id"].(float64)
	_, out = post(t, app, "/wishes", map[string]interface{}{"name": "Budi", "message": "Selamat"})
	wid := out["data"].(map[string]interface{})["id"].(float64)

	code, out := sendJSON(t, app, "PUT", "/admin/rsvp/"+ftoa(rid), map[string]interface{}{
		"guest_name": "Budi Santoso", "attendance": "attending", "guest_count": 3, "message": "Datang",
	})
	require.Equal(t, fiber.StatusOK, code, out)
	row := out["data"].(map[string]interface{})
	assert.Equal(t, "Budi Santoso", row["guest_name"])
	assert.Equal(t, float64(3), row["guest_count"])

	code, _ = sendJSON(t, app, "PUT", "/admin/rsvp/"+ftoa(rid), map[string]interface{}{"guest_name": "Budi", "attendance": "maybe"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = sendJSON(t, app, "PUT", "/admin/rsvp/999", map[string]interface{}{"guest_name": "Budi", "attendance": "attending"})
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out = sendJSON(t, app, "PUT", "/admin/wishes/"+ftoa(wid), map[string]interface{}{"name": "Budi", "message": "Selamat ya"})
	require.Equal(t, fiber.StatusOK, code, out)
	assert.Equal(t, "Selamat ya", out["data"].(map[string]interface{})["message"])
}

func TestBulkDelete(t *testing.T) {
	app := setupResponsesTest(t, nil)
	var rids, wids []int
	for _, name := range []string{"A", "B", "C"} {
		_, out := post(t, app, "/rsvp", map[string]interface{}{"guest_name": name, "attendance": "attending", "guest_count": 1})
		rids = append(rids, int(out["data"].(map[string]interface{})["id"].(float64)))
		_, out = post(t, app, "/wishes", map[string]interface{}{"name": name, "message": "Selamat"})
		wids = append(wids, int(out["data"].(map[string]interface{})["id"].(float64)))
	}

	code, out := sendJSON(t, app, "DELETE", "/admin/rsvp", map[string]interface{}{"ids": rids[:2]})
	require.Equal(t, fiber.StatusOK, code, out)
	assert.Equal(t, float64(2), out["data"].(map[string]interface{})["deleted"])

	code, out = sendJSON(t, app, "DELETE", "/admin/wishes", map[string]interface{}{"ids": wids})
	require.Equal(t, fiber.StatusOK, code, out)
	assert.Equal(t, float64(3), out["data"].(map[string]interface{})["deleted"])

	_, out = send(t, app, httptest.NewRequest("GET", "/rsvp", nil))
	assert.Len(t, out["data"].([]interface{}), 1)
	_, out = send(t, app, httptest.NewRequest("GET", "/wishes", nil))
	assert.Len(t, out["data"].([]interface{}), 0)

	code, _ = sendJSON(t, app, "DELETE", "/admin/rsvp", map[string]interface{}{"ids": []int{}})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = sendJSON(t, app, "DELETE", "/admin/wishes", map[string]interface{}{"ids": wids})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func ftoa(f float64) string {
	b, _ := json.Marshal(int(f))
	return string(b)
}
