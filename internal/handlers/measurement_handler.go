package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type measurementRecorder interface {
	RecordMeasurement(
		ctx context.Context,
		userID int64,
		input services.RecordMeasurementInput,
	) (*services.MeasurementResult, error)
	ListMeasurements(
		ctx context.Context,
		filter repository.AnthropometryListFilter,
	) ([]models.Anthropometry, int, error)
	LatestMeasurement(ctx context.Context, userID int64) (*models.Anthropometry, error)
}

type MeasurementHandler struct {
	service measurementRecorder
	loc     *time.Location
}

func NewMeasurementHandler(service measurementRecorder, loc *time.Location) *MeasurementHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MeasurementHandler{service: service, loc: loc}
}

type recordMeasurementRequest struct {
	WeightKG   float64    `json:"weight_kg"`
	WaistCM    *float64   `json:"waist_cm"`
	NeckCM     *float64   `json:"neck_cm"`
	HipCM      *float64   `json:"hip_cm"`
	MeasuredAt *time.Time `json:"measured_at"`
}

func (h *MeasurementHandler) RecordMeasurement(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req recordMeasurementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.WeightKG <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weight_kg must be greater than 0"})
	}

	result, err := h.service.RecordMeasurement(c.Context(), userID, services.RecordMeasurementInput{
		WeightKG:   req.WeightKG,
		WaistCM:    req.WaistCM,
		NeckCM:     req.NeckCM,
		HipCM:      req.HipCM,
		MeasuredAt: req.MeasuredAt,
	})
	if err != nil {
		return mapMeasurementError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// ListMeasurements pages through measurements, most recent first. from and to
// are inclusive calendar days.
func (h *MeasurementHandler) ListMeasurements(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	from, err := parseDate(c.Query("from"), h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must use YYYY-MM-DD"})
	}
	to, err := parseDate(c.Query("to"), h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must use YYYY-MM-DD"})
	}
	page, limit := pageParams(c.Query("page"), c.Query("limit"))

	filter := repository.AnthropometryListFilter{
		UserID: userID,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	measurements, total, err := h.service.ListMeasurements(c.Context(), filter)
	if err != nil {
		return mapMeasurementError(c, err)
	}

	return c.JSON(fiber.Map{
		"measurements": measurements,
		"pagination":   buildPaginationMeta(page, limit, total),
	})
}

func (h *MeasurementHandler) LatestMeasurement(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	measurement, err := h.service.LatestMeasurement(c.Context(), userID)
	if err != nil {
		return mapMeasurementError(c, err)
	}

	return c.JSON(fiber.Map{"measurement": measurement})
}

func mapMeasurementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid measurement"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No measurements recorded"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process measurement"})
	}
}
