// Package request holds small parsing helpers shared by the HTTP handlers.
package request

import (
	"strconv"
	"strings"

	"wedding-invitation/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ParamID parses a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.ValidationField(name, "Invalid "+name)
	}
	return uint(n), nil
}

// QueryBool parses an optional boolean query parameter; absent or empty is nil.
func QueryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.ValidationField(name, name+" must be true or false")
	}
	return &b, nil
}

// QueryInt parses an optional integer query parameter, returning def when absent.
func QueryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.ValidationField(name, name+" must be an integer")
	}
	return n, nil
}

// Body decodes the JSON body into v.
func Body(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return apperr.Validation("Request body is required")
	}
	if err := c.BodyParser(v); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}
