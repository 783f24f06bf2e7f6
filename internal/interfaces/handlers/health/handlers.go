package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	healthsvc "wedding-invitation/internal/health"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "wedding-invitation-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
	SiteURL        string
}

func (h *Handlers) collect(ctx context.Context) healthsvc.CollectResult {
	return healthsvc.CollectHealth(ctx, h.Rdb, h.DB, healthsvc.Options{SiteURL: h.SiteURL})
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if h.HealthAdminKey == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if h.Rdb == nil {
		return response.Error(c, "Redis is not configured", fiber.StatusServiceUnavailable, nil)
	}
	ctx := c.UserContext()
	keys := []string{middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.FromError(c, err)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns health data as JSON.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.collect(c.UserContext())
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the last 50 error log entries from Redis.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	errs := make([]map[string]interface{}, 0)
	if h.Rdb == nil {
		return c.JSON(errs)
	}
	entries, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errs)
	}
	for _, s := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			errs = append(errs, m)
		}
	}
	return c.JSON(errs)
}

// Dashboard returns the HTML health status page.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	html, err := healthsvc.RenderDashboardHTML(h.collect(c.UserContext()))
	if err != nil {
		return response.FromError(c, err)
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(html)
}
