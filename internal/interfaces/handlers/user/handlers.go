package user

import (
	usersvc "wedding-invitation/internal/application/user"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves admin account management. Every route requires manage_users.
type Handlers struct {
	Service *usersvc.Service
}

func actor(c *fiber.Ctx) (usersvc.Actor, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok || u.ID() == 0 {
		return usersvc.Actor{}, false
	}
	return usersvc.Actor{ID: u.ID(), Role: u.Role}, true
}

// ListUsers GET /api/v1/admin/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users retrieved", fiber.Map{"users": users}, nil)
}

// CreateUser POST /api/v1/admin/users
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in usersvc.CreateInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.Create(c.UserContext(), a, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// UpdateUser PUT /api/v1/admin/users/:id: role, deactivation and password changes end the target's sessions.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in usersvc.UpdateInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.Update(c.UserContext(), a, id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated successfully", fiber.Map{"user": u}, nil)
}

// DeleteUser DELETE /api/v1/admin/users/:id: deactivates the account.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), a, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deactivated", nil, nil)
}
