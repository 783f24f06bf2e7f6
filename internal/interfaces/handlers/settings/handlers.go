package settings

import (
	settingssvc "wedding-invitation/internal/application/settings"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *settingssvc.Service
}

// GET /api/v1/settings: public key/value bag.
func (h *Handlers) Get(c *fiber.Ctx) error {
	all, err := h.Service.All(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Settings retrieved", all, nil)
}

// POST /api/v1/admin/settings: body is a flat object of string values.
func (h *Handlers) Update(c *fiber.Ctx) error {
	var values map[string]string
	if err := request.Body(c, &values); err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Upsert(c.UserContext(), values); err != nil {
		return response.FromError(c, err)
	}
	all, err := h.Service.All(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Settings saved", all, nil)
}
