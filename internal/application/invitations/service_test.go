package invitations

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"wedding-invitation/internal/application/settings"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	s := &Service{SiteURL: "https://nikah.example/", QueryParam: "to"}
	assert.Equal(t, "https://nikah.example/?to=budi-dan-keluarga", s.Link("budi-dan-keluarga"))

	s = &Service{SiteURL: "http://localhost:4321"}
	assert.Equal(t, "http://localhost:4321/?to=a%26b", s.Link("a&b"))
}

func TestQRCode(t *testing.T) {
	s := &Service{SiteURL: "https://nikah.example"}
	b, err := s.QRCode("sari", 256)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	b, err = s.QRCode("sari", 10)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, MinQRSize, img.Bounds().Dx())
}

func TestPDF(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	st := &settings.Service{DB: db}
	require.NoError(t, st.Upsert(context.Background(), map[string]string{settings.KeyBrideName: "Dewi", settings.KeyGroomName: "Budi"}))

	s := &Service{SiteURL: "https://nikah.example", Settings: st}
	var buf bytes.Buffer
	err = s.PDF(context.Background(), &buf, []domain.Guest{
		{ID: 1, GuestName: "Sari & Keluarga", GuestSlug: "sari-dan-keluarga", MaxGuests: 4},
		{ID: 2, GuestName: "José Ramírez", GuestSlug: "jos-ramrez", MaxGuests: 1},
	})
	require.NoError(t, err)
	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	pages := bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
	assert.Equal(t, 2, pages)
}

func TestPDF_NoGuests(t *testing.T) {
	s := &Service{SiteURL: "https://nikah.example"}
	err := s.PDF(context.Background(), &bytes.Buffer{}, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
