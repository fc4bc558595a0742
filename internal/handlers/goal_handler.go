package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type goalService interface {
	CreateGoal(ctx context.Context, userID int64, input services.CreateGoalInput) (*models.Goal, error)
	ListGoals(ctx context.Context, userID int64, active, fulfilled *bool) ([]models.Goal, error)
	ActiveProgress(ctx context.Context, userID int64) (*models.GoalProgress, error)
	CancelGoal(ctx context.Context, userID, goalID int64) (*models.Goal, error)
}

type GoalHandler struct {
	service goalService
	loc     *time.Location
}

func NewGoalHandler(service goalService, loc *time.Location) *GoalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &GoalHandler{service: service, loc: loc}
}

type createGoalRequest struct {
	StartWeightKG  *float64 `json:"start_weight_kg"`
	TargetWeightKG float64  `json:"target_weight_kg"`
	Direction      string   `json:"direction"`
	Deadline       string   `json:"deadline"`
}

func (h *GoalHandler) CreateGoal(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	deadline, err := parseDate(req.Deadline, h.loc)
	if err != nil || deadline.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deadline must use YYYY-MM-DD"})
	}

	direction := strings.ToLower(strings.TrimSpace(req.Direction))
	if direction != "" && direction != models.GoalDirectionGain && direction != models.GoalDirectionLose {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "direction must be one of: gain, lose"})
	}

	goal, err := h.service.CreateGoal(c.Context(), userID, services.CreateGoalInput{
		StartWeightKG:  req.StartWeightKG,
		TargetWeightKG: req.TargetWeightKG,
		Direction:      direction,
		Deadline:       deadline,
	})
	if err != nil {
		return mapGoalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"goal": goal})
}

// ListGoals filters by the activa and cumplida query flags.
func (h *GoalHandler) ListGoals(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	active, err := parseOptionalBool(c.Query("activa"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "activa must be true or false"})
	}
	fulfilled, err := parseOptionalBool(c.Query("cumplida"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cumplida must be true or false"})
	}

	goals, err := h.service.ListGoals(c.Context(), userID, active, fulfilled)
	if err != nil {
		return mapGoalError(c, err)
	}

	return c.JSON(fiber.Map{"goals": goals})
}

func (h *GoalHandler) ActiveProgress(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	progress, err := h.service.ActiveProgress(c.Context(), userID)
	if err != nil {
		return mapGoalError(c, err)
	}

	return c.JSON(fiber.Map{"progress": progress})
}

func (h *GoalHandler) CancelGoal(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal id"})
	}

	goal, err := h.service.CancelGoal(c.Context(), userID, goalID)
	if err != nil {
		return mapGoalError(c, err)
	}

	return c.JSON(fiber.Map{"goal": goal})
}

func mapGoalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Goal is no longer active"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process goal request"})
	}
}
