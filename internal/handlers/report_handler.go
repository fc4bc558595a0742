package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type reportService interface {
	Generate(ctx context.Context, userID int64, from, to time.Time) (*models.ProgressReport, error)
	ListReports(ctx context.Context, actorID int64, role string, ownerID int64) ([]models.ProgressReport, error)
	GetReport(ctx context.Context, actorID int64, role string, reportID int64) (*models.ProgressReport, error)
	AddFeedback(
		ctx context.Context,
		professionalID int64,
		reportID int64,
		input services.AddFeedbackInput,
	) (*models.Feedback, error)
}

type ReportHandler struct {
	service reportService
	loc     *time.Location
}

func NewReportHandler(service reportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{service: service, loc: loc}
}

type generateReportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type addFeedbackRequest struct {
	Comment string `json:"comment"`
	Rating  *int   `json:"rating"`
}

func (h *ReportHandler) GenerateReport(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req generateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	from, err := parseDate(req.From, h.loc)
	if err != nil || from.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must use YYYY-MM-DD"})
	}
	to, err := parseDate(req.To, h.loc)
	if err != nil || to.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must use YYYY-MM-DD"})
	}

	report, err := h.service.Generate(c.Context(), userID, from, to)
	if err != nil {
		return mapReportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}

// ListReports lists the caller's reports. Professionals pass the client in
// the user_id query parameter.
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	ownerID := actorID
	if role == models.RoleProfessional {
		clientID, err := strconv.ParseInt(strings.TrimSpace(c.Query("user_id")), 10, 64)
		if err != nil || clientID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id must be a positive integer"})
		}
		ownerID = clientID
	}

	reports, err := h.service.ListReports(c.Context(), actorID, role, ownerID)
	if err != nil {
		return mapReportError(c, err)
	}

	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report id"})
	}

	report, err := h.service.GetReport(c.Context(), actorID, role, reportID)
	if err != nil {
		return mapReportError(c, err)
	}

	return c.JSON(fiber.Map{"report": report})
}

func (h *ReportHandler) AddFeedback(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	professionalID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report id"})
	}

	var req addFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Comment) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "comment is required"})
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
	}

	feedback, err := h.service.AddFeedback(c.Context(), professionalID, reportID, services.AddFeedbackInput{
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		return mapReportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"feedback": feedback})
}

func mapReportError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process report request"})
	}
}
