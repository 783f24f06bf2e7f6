package invitations

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	guestsvc "wedding-invitation/internal/application/guests"
	invsvc "wedding-invitation/internal/application/invitations"
	"wedding-invitation/internal/application/settings"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInvitationsTest(t *testing.T) (*fiber.App, *guestsvc.Service) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	g := &guestsvc.Service{DB: db}
	h := &Handlers{
		Service: &invsvc.Service{SiteURL: "https://ayu-budi.example", QueryParam: "to", Settings: &settings.Service{DB: db}},
		Guests:  g,
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/guests/:id/qr.png", h.QRCode)
	app.Get("/guests/:id/invitation.pdf", h.Card)
	app.Get("/invitations/batch.pdf", h.Batch)
	return app, g
}

func get(t *testing.T, app *fiber.App, path string) (int, string, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), body
}

func TestQRCode(t *testing.T) {
	app, g := setupInvitationsTest(t)
	guest, err := g.Create(context.Background(), guestsvc.CreateInput{GuestName: "Budi Santoso"})
	require.NoError(t, err)

	code, ctype, body := get(t, app, "/guests/"+strconv.FormatUint(uint64(guest.ID), 10)+"/qr.png?size=200")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "image/png", ctype)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	code, _, _ = get(t, app, "/guests/999/qr.png")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _, _ = get(t, app, "/guests/abc/qr.png")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestCardAndBatch(t *testing.T) {
	app, g := setupInvitationsTest(t)
	ctx := context.Background()
	first, err := g.Create(ctx, guestsvc.CreateInput{GuestName: "Budi Santoso", Category: "family"})
	require.NoError(t, err)
	_, err = g.Create(ctx, guestsvc.CreateInput{GuestName: "Citra", Category: "friend"})
	require.NoError(t, err)

	code, ctype, body := get(t, app, "/guests/"+strconv.FormatUint(uint64(first.ID), 10)+"/invitation.pdf")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "application/pdf", ctype)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	code, _, body = get(t, app, "/invitations/batch.pdf?category=friend")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestBatch_EmptyAndInvalidCategory(t *testing.T) {
	app, _ := setupInvitationsTest(t)

	code, _, _ := get(t, app, "/invitations/batch.pdf")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _, _ = get(t, app, "/invitations/batch.pdf?category=vip")
	assert.Equal(t, fiber.StatusBadRequest, code)
}
