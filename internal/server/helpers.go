package server

import (
	"errors"
	"log/slog"
	"strings"

	"mediavault/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// clientIP returns the viewer address used for analytics attribution. The
// first X-Forwarded-For entry wins when present; local loopback spellings
// collapse to 127.0.0.1 so one machine counts as one viewer.
func clientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if trimmed := strings.TrimSpace(first); trimmed != "" {
			ip = trimmed
		}
	}
	if ip == "::1" || ip == "::ffff:127.0.0.1" {
		ip = "127.0.0.1"
	}
	return ip
}

// respondServiceError maps a service-layer error onto an HTTP status. The
// error codes come from the models.AppError constructors.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case "VALIDATION_ERROR":
		status = fiber.StatusBadRequest
	case "UNAUTHORIZED":
		status = fiber.StatusUnauthorized
	case "FORBIDDEN":
		status = fiber.StatusForbidden
	case "NOT_FOUND":
		status = fiber.StatusNotFound
	}
	// The response body stays generic for 500s; the cause goes to the log.
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", appErr.Error())
	}
	return models.RespondWithError(c, status, appErr)
}
