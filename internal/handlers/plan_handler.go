package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

const maxAttachmentSizeBytes = 10 * 1024 * 1024

type planApplicationService interface {
	RequestPlan(ctx context.Context, userID int64, input services.RequestPlanInput) (*models.PlanRequest, error)
	ListRequests(ctx context.Context, actorID int64, role string, status string) ([]models.PlanRequest, error)
	GetRequest(ctx context.Context, actorID int64, role string, requestID int64) (*models.PlanRequest, error)
	UpdateRequestStatus(
		ctx context.Context,
		actorID int64,
		role string,
		requestID int64,
		requestedStatus string,
	) (*models.PlanRequest, error)
	CreateTrainingPlan(
		ctx context.Context,
		professionalID int64,
		input services.CreateTrainingPlanInput,
	) (*models.TrainingPlan, error)
	CreateNutritionPlan(
		ctx context.Context,
		professionalID int64,
		input services.CreateNutritionPlanInput,
	) (*models.NutritionPlan, error)
	ListPlans(ctx context.Context, actorID int64, role string) (*services.PlanList, error)
	GetTrainingPlan(ctx context.Context, actorID int64, role string, planID int64) (*models.TrainingPlan, error)
	GetNutritionPlan(ctx context.Context, actorID int64, role string, planID int64) (*models.NutritionPlan, error)
	GetAttachmentURL(ctx context.Context, actorID int64, role string, planID int64) (string, error)
	ReplaceAttachment(
		ctx context.Context,
		professionalID int64,
		planID int64,
		file multipart.File,
		filename string,
	) (*models.TrainingPlan, error)
}

type PlanHandler struct {
	service planApplicationService
}

func NewPlanHandler(service planApplicationService) *PlanHandler {
	return &PlanHandler{service: service}
}

type requestPlanRequest struct {
	ProfessionalID int64   `json:"professional_id"`
	PlanType       string  `json:"plan_type"`
	Message        *string `json:"message"`
}

type updateRequestStatusRequest struct {
	Status string `json:"status"`
}

type createNutritionPlanRequest struct {
	RequestID     *int64   `json:"request_id"`
	UserID        int64    `json:"user_id"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	DailyCalories float64  `json:"daily_calories"`
	ProteinG      *float64 `json:"protein_g"`
	CarbsG        *float64 `json:"carbs_g"`
	FatG          *float64 `json:"fat_g"`
}

func (h *PlanHandler) RequestPlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req requestPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	planType := strings.ToLower(strings.TrimSpace(req.PlanType))
	if planType != models.PlanTypeTraining && planType != models.PlanTypeNutrition {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "plan_type must be one of: training, nutrition"})
	}
	if req.ProfessionalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "professional_id must be a positive integer"})
	}

	request, err := h.service.RequestPlan(c.Context(), userID, services.RequestPlanInput{
		ProfessionalID: req.ProfessionalID,
		PlanType:       planType,
		Message:        req.Message,
	})
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

func (h *PlanHandler) ListRequests(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requests, err := h.service.ListRequests(c.Context(), actorID, role, c.Query("status"))
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

func (h *PlanHandler) GetRequest(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	request, err := h.service.GetRequest(c.Context(), actorID, role, requestID)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *PlanHandler) UpdateRequestStatus(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	var req updateRequestStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	request, err := h.service.UpdateRequestStatus(c.Context(), actorID, role, requestID, req.Status)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

// CreateTrainingPlan takes a multipart form. The file part is optional.
func (h *PlanHandler) CreateTrainingPlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	professionalID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, err := parseOptionalFormID(c.FormValue("request_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request_id must be a positive integer"})
	}
	userID, err := parseOptionalFormID(c.FormValue("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id must be a positive integer"})
	}
	if requestID == nil && userID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request_id or user_id is required"})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	sessionsPerWeek, err := strconv.Atoi(strings.TrimSpace(c.FormValue("sessions_per_week")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessions_per_week must be an integer"})
	}
	weeks, err := strconv.Atoi(strings.TrimSpace(c.FormValue("weeks")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weeks must be an integer"})
	}

	var description *string
	if rawDescription := c.FormValue("description"); rawDescription != "" {
		description = &rawDescription
	}

	input := services.CreateTrainingPlanInput{
		RequestID:       requestID,
		Title:           title,
		Description:     description,
		SessionsPerWeek: sessionsPerWeek,
		Weeks:           weeks,
	}
	if userID != nil {
		input.UserID = *userID
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		if validationErr := validateAttachment(fileHeader); validationErr != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open file"})
		}
		defer file.Close()
		input.File = file
		input.Filename = fileHeader.Filename
	}

	plan, err := h.service.CreateTrainingPlan(c.Context(), professionalID, input)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) CreateNutritionPlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	professionalID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createNutritionPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RequestID == nil && req.UserID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request_id or user_id is required"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if req.DailyCalories <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "daily_calories must be greater than 0"})
	}

	plan, err := h.service.CreateNutritionPlan(c.Context(), professionalID, services.CreateNutritionPlanInput{
		RequestID:     req.RequestID,
		UserID:        req.UserID,
		Title:         req.Title,
		Description:   req.Description,
		DailyCalories: req.DailyCalories,
		ProteinG:      floatValueResponse(req.ProteinG),
		CarbsG:        floatValueResponse(req.CarbsG),
		FatG:          floatValueResponse(req.FatG),
	})
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	plans, err := h.service.ListPlans(c.Context(), actorID, role)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PlanHandler) GetTrainingPlan(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	plan, err := h.service.GetTrainingPlan(c.Context(), actorID, role, planID)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) GetNutritionPlan(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	plan, err := h.service.GetNutritionPlan(c.Context(), actorID, role, planID)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) DownloadAttachment(c *fiber.Ctx) error {
	actorID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	signedURL, err := h.service.GetAttachmentURL(c.Context(), actorID, role, planID)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"download_url": signedURL, "expires_in_seconds": 3600})
}

func (h *PlanHandler) ReplaceAttachment(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	professionalID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if validationErr := validateAttachment(fileHeader); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer file.Close()

	plan, err := h.service.ReplaceAttachment(c.Context(), professionalID, planID, file, fileHeader.Filename)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{"plan": plan})
}

func parseOptionalFormID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return nil, errInvalidNumber
	}
	return &value, nil
}

func validateAttachment(fileHeader *multipart.FileHeader) string {
	if fileHeader.Size <= 0 {
		return "file is empty"
	}
	if fileHeader.Size > maxAttachmentSizeBytes {
		return "file exceeds 10MB limit"
	}
	return ""
}

func mapPlanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotAssociated):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Professional is not associated with the user"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Request cannot move to that status"})
	case errors.Is(err, services.ErrProfessionalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan or related resource not found"})
	case errors.Is(err, services.ErrAttachmentTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file exceeds 10MB limit"})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"error": "Storage service is not configured"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process plan request"})
	}
}
