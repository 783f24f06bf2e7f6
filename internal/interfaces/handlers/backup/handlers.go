package backup

import (
	backupsvc "wedding-invitation/internal/application/backup"
	"wedding-invitation/internal/interfaces/handlers/request"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *backupsvc.Service
}

// POST /api/v1/admin/backup
func (h *Handlers) Backup(c *fiber.Ctx) error {
	snap, err := h.Service.Backup(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Backup created", snap, nil)
}

type restoreRequest struct {
	Filename string `json:"filename"`
}

// POST /api/v1/admin/restore
func (h *Handlers) Restore(c *fiber.Ctx) error {
	var req restoreRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Filename == "" {
		return response.FromError(c, apperr.ValidationField("filename", "filename is required"))
	}
	if err := h.Service.Restore(c.UserContext(), req.Filename); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Database restored", fiber.Map{"filename": req.Filename}, nil)
}

// GET /api/v1/admin/backup/download?file=
func (h *Handlers) Download(c *fiber.Ctx) error {
	f, name, err := h.Service.Open(c.Query("file"))
	if err != nil {
		return response.FromError(c, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return response.FromError(c, apperr.Storage(err))
	}
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	// fasthttp closes f once the body has been written.
	return c.SendStream(f, int(info.Size()))
}

// GET /api/v1/admin/backup/history: history rows plus the snapshots on disk.
func (h *Handlers) History(c *fiber.Ctx) error {
	history, err := h.Service.History(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	snaps, err := h.Service.Snapshots()
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Backup history", fiber.Map{"history": history, "snapshots": snaps}, nil)
}
