package guests

import (
	"strings"

	guestsvc "wedding-invitation/internal/application/guests"
	"wedding-invitation/internal/application/slug"
	statssvc "wedding-invitation/internal/application/stats"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *guestsvc.Service
	Stats   *statssvc.Service
}

// GET /api/v1/guest/:slug: public lookup; counts one open.
// Unknown slugs are 404 with a display-only fallback_name.
func (h *Handlers) GetBySlug(c *fiber.Ctx) error {
	s := strings.TrimSpace(c.Params("slug"))
	g, err := h.Service.RecordOpen(c.UserContext(), s)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return response.Error(c, "Guest not found", fiber.StatusNotFound, fiber.Map{
				"fallback_name": slug.ToDisplayName(s),
			})
		}
		return response.FromError(c, err)
	}
	return response.Success(c, "Guest found", fiber.Map{"guest": g}, nil)
}

// GET /api/v1/admin/guests?category=&has_rsvp=&is_opened=&search=&limit=&offset=
func (h *Handlers) List(c *fiber.Ctx) error {
	f := guestsvc.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   c.Query("search"),
	}
	var err error
	if f.HasRSVP, err = request.QueryBool(c, "has_rsvp"); err != nil {
		return response.FromError(c, err)
	}
	if f.IsOpened, err = request.QueryBool(c, "is_opened"); err != nil {
		return response.FromError(c, err)
	}
	if f.Limit, err = request.QueryInt(c, "limit", guestsvc.DefaultLimit); err != nil {
		return response.FromError(c, err)
	}
	if f.Offset, err = request.QueryInt(c, "offset", 0); err != nil {
		return response.FromError(c, err)
	}
	page, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Guests retrieved", page.Guests, fiber.Map{
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// POST /api/v1/admin/guests
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in guestsvc.CreateInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	g, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Guest created", fiber.Map{"guest": g}, nil)
}

// GET /api/v1/admin/guests/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	g, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Guest retrieved", fiber.Map{"guest": g}, nil)
}

// PUT /api/v1/admin/guests/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in guestsvc.UpdateInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	g, err := h.Service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Guest updated", fiber.Map{"guest": g}, nil)
}

// DELETE /api/v1/admin/guests/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Guest deleted", nil, nil)
}

type checkInRequest struct {
	CheckedInBy  string `json:"checked_in_by"`
	CheckInNotes string `json:"check_in_notes"`
}

// POST /api/v1/admin/guests/:id/check-in: 409 when already checked in.
// checked_in_by defaults to the session user's name.
func (h *Handlers) CheckIn(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req checkInRequest
	if len(c.Body()) > 0 {
		if err := request.Body(c, &req); err != nil {
			return response.FromError(c, err)
		}
	}
	by := strings.TrimSpace(req.CheckedInBy)
	if by == "" {
		if u, ok := middleware.CurrentUser(c); ok {
			by = u.FullName
		}
	}
	g, err := h.Service.CheckIn(c.UserContext(), id, by, req.CheckInNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, g.GuestName+" checked in", fiber.Map{"guest": g}, nil)
}

type markSentRequest struct {
	Via string `json:"via"`
}

// POST /api/v1/admin/guests/:id/mark-sent
func (h *Handlers) MarkSent(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req markSentRequest
	if len(c.Body()) > 0 {
		if err := request.Body(c, &req); err != nil {
			return response.FromError(c, err)
		}
	}
	g, err := h.Service.MarkSent(c.UserContext(), id, strings.TrimSpace(req.Via))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invitation marked as sent", fiber.Map{"guest": g}, nil)
}

// GET /api/v1/admin/guests/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	report, err := h.Stats.Report(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Guest statistics", report, nil)
}
