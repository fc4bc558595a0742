package handlers

import (
	"context"
	"errors"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/steps"
	livews "github.com/MelissaPizarroD/WeightTracker-sub001/internal/websocket"
)

const maxReadingsPerBatch = 500

type stepService interface {
	Start(ctx context.Context, userID int64) (*models.StepsToday, error)
	Stop(ctx context.Context, userID int64) (*models.StepsToday, error)
	Ingest(ctx context.Context, userID int64, readings []steps.Reading) (*models.StepsToday, error)
	SyncNow(ctx context.Context, userID int64) (int, error)
	Today(ctx context.Context, userID int64) (*models.StepsToday, error)
	History(ctx context.Context, userID int64, from, to time.Time) ([]models.StepRecord, error)
}

// StepsHandler is the device-facing side of the step pipeline.
type StepsHandler struct {
	service stepService
	hub     *livews.Hub
	loc     *time.Location
	now     func() time.Time
}

func NewStepsHandler(service stepService, hub *livews.Hub, loc *time.Location) *StepsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StepsHandler{service: service, hub: hub, loc: loc, now: time.Now}
}

type ingestReadingsRequest struct {
	Readings []steps.Reading `json:"readings"`
}

func (h *StepsHandler) Start(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	today, err := h.service.Start(c.Context(), userID)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"steps": today})
}

func (h *StepsHandler) Stop(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	today, err := h.service.Stop(c.Context(), userID)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"steps": today})
}

// IngestReadings applies a batch of sensor readings in the order given.
func (h *StepsHandler) IngestReadings(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req ingestReadingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Readings) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "readings must contain at least one item"})
	}
	if len(req.Readings) > maxReadingsPerBatch {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "too many readings in one batch"})
	}

	today, err := h.service.Ingest(c.Context(), userID, req.Readings)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"steps": today})
}

func (h *StepsHandler) Today(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	today, err := h.service.Today(c.Context(), userID)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"steps": today})
}

// History defaults to the last seven days ending today.
func (h *StepsHandler) History(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	to, err := parseDate(c.Query("to"), h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must use YYYY-MM-DD"})
	}
	if to.IsZero() {
		now := h.now().In(h.loc)
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	}
	from, err := parseDate(c.Query("from"), h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must use YYYY-MM-DD"})
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -6)
	}

	records, err := h.service.History(c.Context(), userID, from, to)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"records": records})
}

func (h *StepsHandler) SyncNow(c *fiber.Ctx) error {
	userID, ok := stepUserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	days, err := h.service.SyncNow(c.Context(), userID)
	if err != nil {
		return mapStepsError(c, err)
	}
	return c.JSON(fiber.Map{"synced_days": days})
}

// HandleLive runs after middleware.WebSocketAuth has set the locals.
func (h *StepsHandler) HandleLive(conn *websocket.Conn) {
	userID, err := parseWSUserID(conn)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := livews.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	today, err := h.service.Today(context.Background(), userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("steps: load snapshot for live client")
	} else {
		client.Greet(steps.Update{
			UserID: userID,
			Day:    today.Day,
			Steps:  today.Steps,
			Reason: steps.UpdateReasonReading,
		})
	}

	go client.WritePump()
	client.ReadPump()
}

func stepUserFromLocals(c *fiber.Ctx) (int64, bool) {
	userID, role, ok := actorFromLocals(c)
	if !ok || role != models.RoleUser {
		return 0, false
	}
	return userID, true
}

func parseWSUserID(conn *websocket.Conn) (int64, error) {
	role, _ := conn.Locals("role").(string)
	if role != models.RoleUser {
		return 0, errors.New("live steps are only available to users")
	}
	raw, _ := conn.Locals("user_id").(string)
	return parseUserIDString(raw)
}

func mapStepsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, steps.ErrInvalidReading):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, steps.ErrInvalidRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date range"})
	case errors.Is(err, steps.ErrCounterInactive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Step counter is not active"})
	case errors.Is(err, steps.ErrConstraintsNotMet):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Sync unavailable, try again later"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process step request"})
	}
}
