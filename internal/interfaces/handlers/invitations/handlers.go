package invitations

import (
	"bytes"
	"strings"

	guestsvc "wedding-invitation/internal/application/guests"
	invsvc "wedding-invitation/internal/application/invitations"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *invsvc.Service
	Guests  *guestsvc.Service
}

// GET /api/v1/admin/guests/:id/qr.png?size=
func (h *Handlers) QRCode(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	size, err := request.QueryInt(c, "size", invsvc.DefaultQRSize)
	if err != nil {
		return response.FromError(c, err)
	}
	g, err := h.Guests.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	png, err := h.Service.QRCode(g.GuestSlug, size)
	if err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+g.GuestSlug+`.png"`)
	return c.Send(png)
}

// GET /api/v1/admin/guests/:id/invitation.pdf
func (h *Handlers) Card(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	g, err := h.Guests.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return h.sendPDF(c, "invitation-"+g.GuestSlug+".pdf", []domain.Guest{*g})
}

// GET /api/v1/admin/invitations/batch.pdf?category=
func (h *Handlers) Batch(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Query("category"))
	if category != "" && !domain.IsValidCategory(category) {
		return response.Error(c, "Invalid guest category", fiber.StatusBadRequest, fiber.Map{"field": "category"})
	}
	list, err := h.Guests.All(c.UserContext(), category)
	if err != nil {
		return response.FromError(c, err)
	}
	name := "invitations.pdf"
	if category != "" {
		name = "invitations-" + category + ".pdf"
	}
	return h.sendPDF(c, name, list)
}

func (h *Handlers) sendPDF(c *fiber.Ctx, filename string, list []domain.Guest) error {
	var buf bytes.Buffer
	if err := h.Service.PDF(c.UserContext(), &buf, list); err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
