package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

var errMissingScope = errors.New("missing owner scope")

// ownerScope returns the data partition resolved by the auth middleware.
func ownerScope(c *fiber.Ctx) (int64, error) {
	ownerID, ok := c.Locals("owner_id").(int64)
	if !ok || ownerID <= 0 {
		return 0, errMissingScope
	}
	return ownerID, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseDateParam accepts either a bare date (2026-01-05) or a full RFC3339
// timestamp, matching what the calendar and booking pages send.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
