package responses

import (
	respsvc "wedding-invitation/internal/application/responses"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *respsvc.Service
}

func (h *Handlers) written(c *fiber.Ctx, what string, res *respsvc.Result) error {
	if res.Action == respsvc.ActionCreated {
		return response.SuccessCreated(c, what+" saved", res, nil)
	}
	return response.Success(c, what+" updated", res, nil)
}

// POST /api/v1/rsvp: upsert by guest name; 201 when created, 200 when updated.
func (h *Handlers) SubmitRSVP(c *fiber.Ctx) error {
	var in respsvc.RSVPInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.SubmitRSVP(c.UserContext(), c.IP(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return h.written(c, "RSVP", res)
}

// GET /api/v1/rsvp
func (h *Handlers) ListRSVPs(c *fiber.Ctx) error {
	rows, err := h.Service.ListRSVPs(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "RSVPs retrieved", rows, fiber.Map{"total": len(rows)})
}

// POST /api/v1/wishes
func (h *Handlers) SubmitWish(c *fiber.Ctx) error {
	var in respsvc.WishInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.SubmitWish(c.UserContext(), c.IP(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return h.written(c, "Wish", res)
}

// GET /api/v1/wishes
func (h *Handlers) ListWishes(c *fiber.Ctx) error {
	rows, err := h.Service.ListWishes(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wishes retrieved", rows, fiber.Map{"total": len(rows)})
}

// IDsInput is the bulk delete body.
type IDsInput struct {
	IDs []uint `json:"ids"`
}

// PUT /api/v1/admin/rsvp/:id
func (h *Handlers) UpdateRSVP(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in respsvc.RSVPUpdate
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.Service.UpdateRSVP(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "RSVP updated", r, nil)
}

// PUT /api/v1/admin/wishes/:id
func (h *Handlers) UpdateWish(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in respsvc.WishUpdate
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	w, err := h.Service.UpdateWish(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wish updated", w, nil)
}

// DELETE /api/v1/admin/rsvp/:id
func (h *Handlers) DeleteRSVP(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteRSVP(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "RSVP deleted", nil, nil)
}

// DELETE /api/v1/admin/rsvp with {"ids": [...]}
func (h *Handlers) DeleteRSVPs(c *fiber.Ctx) error {
	var in IDsInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	n, err := h.Service.DeleteRSVPs(c.UserContext(), in.IDs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "RSVPs deleted", fiber.Map{"deleted": n}, nil)
}

// DELETE /api/v1/admin/wishes/:id
func (h *Handlers) DeleteWish(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteWish(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wish deleted", nil, nil)
}

// DELETE /api/v1/admin/wishes with {"ids": [...]}
func (h *Handlers) DeleteWishes(c *fiber.Ctx) error {
	var in IDsInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	n, err := h.Service.DeleteWishes(c.UserContext(), in.IDs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wishes deleted", fiber.Map{"deleted": n}, nil)
}
