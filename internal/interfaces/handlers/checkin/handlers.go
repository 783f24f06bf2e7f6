package checkin

import (
	checkinsvc "wedding-invitation/internal/application/checkin"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *checkinsvc.Service
}

type scanRequest struct {
	Payload      string `json:"payload"`
	CheckedInBy  string `json:"checked_in_by"`
	CheckInNotes string `json:"check_in_notes"`
}

// POST /api/v1/admin/check-in/scan: payload is the decoded QR text (invitation URL or bare slug).
func (h *Handlers) Scan(c *fiber.Ctx) error {
	var req scanRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.Scan(c.UserContext(), req.Payload, req.CheckedInBy, req.CheckInNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, out.Guest.GuestName+" checked in", out, nil)
}

type manualRequest struct {
	GuestID      uint   `json:"guest_id"`
	CheckInNotes string `json:"check_in_notes"`
}

// POST /api/v1/admin/check-in/manual
func (h *Handlers) Manual(c *fiber.Ctx) error {
	var req manualRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.GuestID == 0 {
		return response.FromError(c, apperr.ValidationField("guest_id", "guest_id is required"))
	}
	g, err := h.Service.Manual(c.UserContext(), req.GuestID, req.CheckInNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, g.GuestName+" checked in", fiber.Map{"guest": g}, nil)
}

// GET /api/v1/admin/check-in/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	st, err := h.Service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Check-in statistics", st, nil)
}
