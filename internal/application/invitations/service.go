// Package invitations renders invitation links, QR codes and printable cards.
package invitations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"wedding-invitation/internal/application/settings"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 512
	MinQRSize     = 128
	MaxQRSize     = 2048
)

// Service builds artwork for guests. Settings may be nil; couple names then fall back to placeholders.
type Service struct {
	SiteURL    string
	QueryParam string
	Settings   *settings.Service
}

// Link returns the public invitation URL for a slug.
func (s *Service) Link(slug string) string {
	param := s.QueryParam
	if param == "" {
		param = "to"
	}
	return strings.TrimRight(s.SiteURL, "/") + "/?" + param + "=" + url.QueryEscape(slug)
}

// QRCode encodes the invitation link as a PNG. Out-of-range sizes are clamped.
func (s *Service) QRCode(slug string, size int) ([]byte, error) {
	switch {
	case size <= 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	png, err := qrcode.Encode(s.Link(slug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

type couple struct {
	bride, groom, venue, date string
}

func (s *Service) couple(ctx context.Context) couple {
	c := couple{bride: "Bride", groom: "Groom"}
	if s.Settings == nil {
		return c
	}
	all, err := s.Settings.All(ctx)
	if err != nil {
		return c
	}
	if v := all[settings.KeyBrideName]; v != "" {
		c.bride = v
	}
	if v := all[settings.KeyGroomName]; v != "" {
		c.groom = v
	}
	c.venue = all[settings.KeyVenueName]
	c.date = all[settings.KeyDate]
	return c
}

// Palette (RGB).
var (
	colorBg      = [3]int{250, 247, 242}
	colorPrimary = [3]int{47, 61, 26}
	colorMuted   = [3]int{120, 113, 108}
)

// PDF writes one A5 card per guest to w.
func (s *Service) PDF(ctx context.Context, w io.Writer, guests []domain.Guest) error {
	if len(guests) == 0 {
		return apperr.Validation("No guests to render")
	}
	c := s.couple(ctx)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(fmt.Sprintf("Wedding of %s & %s", c.bride, c.groom), true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, height := pdf.GetPageSize()

	for i, g := range guests {
		png, err := s.QRCode(g.GuestSlug, DefaultQRSize)
		if err != nil {
			return err
		}
		imgName := fmt.Sprintf("qr-%d-%d", i, g.ID)
		pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

		pdf.AddPage()
		pdf.SetFillColor(colorBg[0], colorBg[1], colorBg[2])
		pdf.Rect(0, 0, width, height, "F")
		pdf.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
		pdf.SetLineWidth(0.6)
		pdf.Rect(8, 8, width-16, height-16, "D")
		pdf.SetLineWidth(0.2)
		pdf.Rect(10, 10, width-20, height-20, "D")

		centered := func(y float64, style string, size float64, rgb [3]int, text string) {
			pdf.SetFont("Times", style, size)
			pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
			pdf.SetXY(12, y)
			pdf.CellFormat(width-24, size*0.5, tr(text), "", 0, "C", false, 0, "")
		}

		centered(30, "", 9, colorMuted, "THE WEDDING OF")
		centered(45, "I", 30, colorPrimary, c.bride)
		centered(60, "", 14, colorMuted, "&")
		centered(72, "I", 30, colorPrimary, c.groom)
		if c.date != "" {
			centered(92, "", 10, colorMuted, c.date)
		}
		if c.venue != "" {
			centered(99, "", 10, colorMuted, c.venue)
		}

		centered(115, "", 9, colorMuted, "Dear")
		centered(123, "B", 16, colorPrimary, g.GuestName)
		centered(132, "", 9, colorMuted, fmt.Sprintf("Invitation for %d %s", g.MaxGuests, plural(g.MaxGuests, "guest", "guests")))

		qrSize := 42.0
		pdf.ImageOptions(imgName, (width-qrSize)/2, 142, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		link := s.Link(g.GuestSlug)
		pdf.SetFont("Times", "", 7)
		pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
		pdf.SetXY(12, 188)
		pdf.CellFormat(width-24, 4, link, "", 0, "C", false, 0, link)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
