package server

import (
	"errors"
	"fmt"
	"strconv"

	"mediavault/internal/models"
	"mediavault/internal/observability"
	"mediavault/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Media file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	media, err := s.mediaService.Upload(c.Context(), service.UploadMediaInput{
		Title:    c.FormValue("title"),
		Type:     c.FormValue("type"),
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(media)
}

// ListMedia handles GET /api/media
func (s *Server) ListMedia(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	assets, err := s.mediaService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if assets == nil {
		assets = []models.MediaAsset{}
	}
	return c.JSON(fiber.Map{"media": assets})
}

// GetStreamURL handles GET /api/media/:id/stream-url
func (s *Server) GetStreamURL(c *fiber.Ctx) error {
	result, err := s.mediaService.StreamURL(c.Context(), c.Params("id"), c.BaseURL())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// StreamMedia handles GET /api/media/:id/stream
func (s *Server) StreamMedia(c *fiber.Ctx) error {
	result, err := s.streamService.Serve(
		c.Context(),
		c.Params("id"),
		c.Query("token"),
		c.Get(fiber.HeaderRange),
		clientIP(c),
	)
	if err != nil {
		var rangeErr *service.RangeNotSatisfiableError
		if errors.As(err, &rangeErr) {
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", rangeErr.Total))
			return models.RespondWithError(c, fiber.StatusRequestedRangeNotSatisfiable,
				models.NewValidationError("Requested range not satisfiable"))
		}
		return respondServiceError(c, err)
	}

	plan := result.Plan
	c.Set(fiber.HeaderContentType, plan.ContentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(plan.Length, 10))
	if plan.Partial() {
		c.Set(fiber.HeaderContentRange, plan.ContentRange)
	}

	observability.StreamedBytes.WithLabelValues(strconv.Itoa(plan.Status)).Add(float64(plan.Length))

	c.Status(plan.Status)
	return c.SendStream(result.Body, int(plan.Length))
}

// RecordView handles POST /api/media/:id/view
func (s *Server) RecordView(c *fiber.Ctx) error {
	if err := s.analyticsService.RecordForMedia(c.Context(), c.Params("id"), clientIP(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "View recorded"})
}

// GetAnalytics handles GET /api/media/:id/analytics
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	snapshot, err := s.analyticsService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snapshot)
}
