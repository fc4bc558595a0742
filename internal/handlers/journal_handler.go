package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type journalService interface {
	AddMeal(ctx context.Context, userID int64, input services.AddMealInput) (*models.Meal, error)
	ListMeals(ctx context.Context, userID int64, day time.Time) ([]models.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID int64) error
	AddActivity(ctx context.Context, userID int64, input services.AddActivityInput) (*models.PhysicalActivity, error)
	ListActivities(ctx context.Context, userID int64, day time.Time) ([]models.PhysicalActivity, error)
	DeleteActivity(ctx context.Context, userID, activityID int64) error
	DailyCalories(ctx context.Context, userID int64, day time.Time) (*models.DailyCalories, error)
}

// JournalHandler serves meals and physical activities. Listing endpoints take
// the day in the fecha query parameter and default to today.
type JournalHandler struct {
	service journalService
	loc     *time.Location
	now     func() time.Time
}

func NewJournalHandler(service journalService, loc *time.Location) *JournalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &JournalHandler{service: service, loc: loc, now: time.Now}
}

type addMealRequest struct {
	Name     string     `json:"name"`
	MealType string     `json:"meal_type"`
	Calories float64    `json:"calories"`
	EatenAt  *time.Time `json:"eaten_at"`
}

type addActivityRequest struct {
	ActivityType    string     `json:"activity_type"`
	DurationMinutes int        `json:"duration_minutes"`
	CaloriesBurned  float64    `json:"calories_burned"`
	PerformedAt     *time.Time `json:"performed_at"`
}

func (h *JournalHandler) AddMeal(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req addMealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	meal, err := h.service.AddMeal(c.Context(), userID, services.AddMealInput{
		Name:     req.Name,
		MealType: req.MealType,
		Calories: req.Calories,
		EatenAt:  req.EatenAt,
	})
	if err != nil {
		return mapJournalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"meal": meal})
}

func (h *JournalHandler) ListMeals(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	day, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fecha must use YYYY-MM-DD"})
	}

	meals, err := h.service.ListMeals(c.Context(), userID, day)
	if err != nil {
		return mapJournalError(c, err)
	}

	return c.JSON(fiber.Map{"meals": meals})
}

func (h *JournalHandler) DeleteMeal(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	mealID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meal id"})
	}

	if err := h.service.DeleteMeal(c.Context(), userID, mealID); err != nil {
		return mapJournalError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JournalHandler) AddActivity(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req addActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	activity, err := h.service.AddActivity(c.Context(), userID, services.AddActivityInput{
		ActivityType:    req.ActivityType,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		PerformedAt:     req.PerformedAt,
	})
	if err != nil {
		return mapJournalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"activity": activity})
}

func (h *JournalHandler) ListActivities(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	day, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fecha must use YYYY-MM-DD"})
	}

	activities, err := h.service.ListActivities(c.Context(), userID, day)
	if err != nil {
		return mapJournalError(c, err)
	}

	return c.JSON(fiber.Map{"activities": activities})
}

func (h *JournalHandler) DeleteActivity(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	activityID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid activity id"})
	}

	if err := h.service.DeleteActivity(c.Context(), userID, activityID); err != nil {
		return mapJournalError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JournalHandler) DailyCalories(c *fiber.Ctx) error {
	userID, ok := h.userFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	day, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fecha must use YYYY-MM-DD"})
	}

	summary, err := h.service.DailyCalories(c.Context(), userID, day)
	if err != nil {
		return mapJournalError(c, err)
	}

	return c.JSON(fiber.Map{"calories": summary})
}

func (h *JournalHandler) userFromLocals(c *fiber.Ctx) (int64, bool) {
	userID, role, ok := actorFromLocals(c)
	if !ok || role != models.RoleUser {
		return 0, false
	}
	return userID, true
}

func (h *JournalHandler) day(c *fiber.Ctx) (time.Time, error) {
	day, err := parseDate(c.Query("fecha"), h.loc)
	if err != nil {
		return time.Time{}, err
	}
	if day.IsZero() {
		return h.now().In(h.loc), nil
	}
	return day, nil
}

func mapJournalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entry not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process journal request"})
	}
}
