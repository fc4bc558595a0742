package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
)

type planStore interface {
	CreateRequest(ctx context.Context, input repository.CreatePlanRequestInput) (*models.PlanRequest, error)
	GetRequestByID(ctx context.Context, requestID int64) (*models.PlanRequest, error)
	ListRequests(ctx context.Context, actorID int64, role string, status string) ([]models.PlanRequest, error)
	UpdateRequestStatusIfCurrent(
		ctx context.Context,
		requestID int64,
		currentStatus string,
		nextStatus string,
	) (*models.PlanRequest, error)
	CreateTrainingPlan(ctx context.Context, input repository.CreateTrainingPlanInput) (*models.TrainingPlan, error)
	GetTrainingPlan(ctx context.Context, planID int64) (*models.TrainingPlan, error)
	SetTrainingPlanAttachment(ctx context.Context, planID int64, attachmentURL string) (*models.TrainingPlan, error)
	ListTrainingPlans(ctx context.Context, actorID int64, role string) ([]models.TrainingPlan, error)
	CreateNutritionPlan(ctx context.Context, input repository.CreateNutritionPlanInput) (*models.NutritionPlan, error)
	GetNutritionPlan(ctx context.Context, planID int64) (*models.NutritionPlan, error)
	ListNutritionPlans(ctx context.Context, actorID int64, role string) ([]models.NutritionPlan, error)
}

type linkChecker interface {
	EnsureLinked(ctx context.Context, userID, professionalID int64) error
}

type PlanService struct {
	planRepo                planStore
	professionalProfileRepo professionalProfileReader
	links                   linkChecker
	storageService          StorageService
}

type RequestPlanInput struct {
	ProfessionalID int64
	PlanType       string
	Message        *string
}

type CreateTrainingPlanInput struct {
	RequestID       *int64
	UserID          int64
	Title           string
	Description     *string
	SessionsPerWeek int
	Weeks           int
	File            multipart.File
	Filename        string
}

type CreateNutritionPlanInput struct {
	RequestID     *int64
	UserID        int64
	Title         string
	Description   *string
	DailyCalories float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
}

type PlanList struct {
	Training  []models.TrainingPlan  `json:"training"`
	Nutrition []models.NutritionPlan `json:"nutrition"`
}

func NewPlanService(
	planRepo planStore,
	professionalProfileRepo professionalProfileReader,
	links linkChecker,
	storageService StorageService,
) *PlanService {
	return &PlanService{
		planRepo:                planRepo,
		professionalProfileRepo: professionalProfileRepo,
		links:                   links,
		storageService:          storageService,
	}
}

// RequestPlan asks an associated professional for a plan. Training plans go
// to coaches, nutrition plans to nutritionists.
func (s *PlanService) RequestPlan(ctx context.Context, userID int64, input RequestPlanInput) (*models.PlanRequest, error) {
	if input.ProfessionalID <= 0 {
		return nil, ErrInvalidInput
	}
	planType := strings.ToLower(strings.TrimSpace(input.PlanType))
	expectedType, ok := professionalTypeForPlan(planType)
	if !ok {
		return nil, ErrInvalidInput
	}

	var message *string
	if input.Message != nil {
		trimmed := strings.TrimSpace(*input.Message)
		if trimmed != "" {
			message = &trimmed
		}
	}

	profile, err := s.professionalProfileRepo.GetByUserID(ctx, input.ProfessionalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}
	if profile.Type == nil || *profile.Type != expectedType {
		return nil, ErrInvalidInput
	}
	if err := s.links.EnsureLinked(ctx, userID, input.ProfessionalID); err != nil {
		return nil, err
	}

	return s.planRepo.CreateRequest(ctx, repository.CreatePlanRequestInput{
		UserID:         userID,
		ProfessionalID: input.ProfessionalID,
		PlanType:       planType,
		Message:        message,
	})
}

func (s *PlanService) ListRequests(
	ctx context.Context,
	actorID int64,
	role string,
	status string,
) ([]models.PlanRequest, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !isPlanRequestStatus(status) {
		return nil, ErrInvalidStatus
	}
	if role != models.RoleUser && role != models.RoleProfessional {
		return nil, ErrForbidden
	}
	return s.planRepo.ListRequests(ctx, actorID, role, status)
}

func (s *PlanService) GetRequest(ctx context.Context, actorID int64, role string, requestID int64) (*models.PlanRequest, error) {
	request, err := s.planRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err)
	}
	if !canAccessPlanRecord(role, actorID, request.UserID, request.ProfessionalID) {
		return nil, ErrForbidden
	}
	return request, nil
}

func (s *PlanService) UpdateRequestStatus(
	ctx context.Context,
	actorID int64,
	role string,
	requestID int64,
	requestedStatus string,
) (*models.PlanRequest, error) {
	request, err := s.GetRequest(ctx, actorID, role, requestID)
	if err != nil {
		return nil, err
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateRequestTransition(role, request, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.planRepo.UpdateRequestStatusIfCurrent(ctx, requestID, request.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *PlanService) CreateTrainingPlan(
	ctx context.Context,
	professionalID int64,
	input CreateTrainingPlanInput,
) (*models.TrainingPlan, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.SessionsPerWeek <= 0 || input.SessionsPerWeek > 14 || input.Weeks <= 0 || input.Weeks > 104 {
		return nil, ErrInvalidInput
	}
	if input.File != nil && s.storageService == nil {
		return nil, ErrStorageUnavailable
	}

	request, userID, err := s.resolvePlanTarget(ctx, professionalID, input.RequestID, input.UserID, models.PlanTypeTraining)
	if err != nil {
		return nil, err
	}

	var attachmentURL *string
	if input.File != nil {
		fileURL, err := s.storageService.UploadFile(ctx, input.File, buildPlanFilename(professionalID, userID, input.Filename), "plans")
		if err != nil {
			return nil, err
		}
		attachmentURL = &fileURL
	}

	plan, err := s.planRepo.CreateTrainingPlan(ctx, repository.CreateTrainingPlanInput{
		RequestID:       input.RequestID,
		UserID:          userID,
		ProfessionalID:  professionalID,
		Title:           title,
		Description:     trimmedOptional(input.Description),
		SessionsPerWeek: input.SessionsPerWeek,
		Weeks:           input.Weeks,
		AttachmentURL:   attachmentURL,
	})
	if err != nil {
		if attachmentURL != nil {
			return nil, s.cleanupUpload(ctx, *attachmentURL, err)
		}
		return nil, err
	}

	s.completeRequest(ctx, request)
	return plan, nil
}

func (s *PlanService) CreateNutritionPlan(
	ctx context.Context,
	professionalID int64,
	input CreateNutritionPlanInput,
) (*models.NutritionPlan, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.DailyCalories <= 0 || input.ProteinG < 0 || input.CarbsG < 0 || input.FatG < 0 {
		return nil, ErrInvalidInput
	}

	request, userID, err := s.resolvePlanTarget(ctx, professionalID, input.RequestID, input.UserID, models.PlanTypeNutrition)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.CreateNutritionPlan(ctx, repository.CreateNutritionPlanInput{
		RequestID:      input.RequestID,
		UserID:         userID,
		ProfessionalID: professionalID,
		Title:          title,
		Description:    trimmedOptional(input.Description),
		DailyCalories:  input.DailyCalories,
		ProteinG:       input.ProteinG,
		CarbsG:         input.CarbsG,
		FatG:           input.FatG,
	})
	if err != nil {
		return nil, err
	}

	s.completeRequest(ctx, request)
	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context, actorID int64, role string) (*PlanList, error) {
	if role != models.RoleUser && role != models.RoleProfessional {
		return nil, ErrForbidden
	}

	training, err := s.planRepo.ListTrainingPlans(ctx, actorID, role)
	if err != nil {
		return nil, err
	}
	nutrition, err := s.planRepo.ListNutritionPlans(ctx, actorID, role)
	if err != nil {
		return nil, err
	}
	return &PlanList{Training: training, Nutrition: nutrition}, nil
}

func (s *PlanService) GetTrainingPlan(
	ctx context.Context,
	actorID int64,
	role string,
	planID int64,
) (*models.TrainingPlan, error) {
	plan, err := s.planRepo.GetTrainingPlan(ctx, planID)
	if err != nil {
		return nil, notFound(err)
	}
	if !canAccessPlanRecord(role, actorID, plan.UserID, plan.ProfessionalID) {
		return nil, ErrForbidden
	}
	return plan, nil
}

func (s *PlanService) GetNutritionPlan(
	ctx context.Context,
	actorID int64,
	role string,
	planID int64,
) (*models.NutritionPlan, error) {
	plan, err := s.planRepo.GetNutritionPlan(ctx, planID)
	if err != nil {
		return nil, notFound(err)
	}
	if !canAccessPlanRecord(role, actorID, plan.UserID, plan.ProfessionalID) {
		return nil, ErrForbidden
	}
	return plan, nil
}

func (s *PlanService) GetAttachmentURL(ctx context.Context, actorID int64, role string, planID int64) (string, error) {
	if s.storageService == nil {
		return "", ErrStorageUnavailable
	}

	plan, err := s.GetTrainingPlan(ctx, actorID, role, planID)
	if err != nil {
		return "", err
	}
	if !plan.HasAttachment {
		return "", ErrNotFound
	}
	return s.storageService.GetSignedURL(ctx, *plan.AttachmentURL)
}

// resolvePlanTarget returns the request being fulfilled (if any) and the user
// the plan is for.
func (s *PlanService) resolvePlanTarget(
	ctx context.Context,
	professionalID int64,
	requestID *int64,
	userID int64,
	planType string,
) (*models.PlanRequest, int64, error) {
	if requestID == nil {
		if userID <= 0 {
			return nil, 0, ErrInvalidInput
		}
		if err := s.links.EnsureLinked(ctx, userID, professionalID); err != nil {
			return nil, 0, err
		}
		return nil, userID, nil
	}

	request, err := s.planRepo.GetRequestByID(ctx, *requestID)
	if err != nil {
		return nil, 0, notFound(err)
	}
	if request.ProfessionalID != professionalID {
		return nil, 0, ErrForbidden
	}
	if request.PlanType != planType {
		return nil, 0, ErrInvalidInput
	}
	if request.Status != models.PlanRequestPending && request.Status != models.PlanRequestAccepted {
		return nil, 0, ErrInvalidStateTransition
	}
	if userID > 0 && userID != request.UserID {
		return nil, 0, ErrInvalidInput
	}
	return request, request.UserID, nil
}

// ReplaceAttachment uploads a new file for a training plan owned by the
// professional and removes the previous one.
func (s *PlanService) ReplaceAttachment(
	ctx context.Context,
	professionalID int64,
	planID int64,
	file multipart.File,
	filename string,
) (*models.TrainingPlan, error) {
	if file == nil {
		return nil, ErrInvalidInput
	}
	if s.storageService == nil {
		return nil, ErrStorageUnavailable
	}

	plan, err := s.GetTrainingPlan(ctx, professionalID, models.RoleProfessional, planID)
	if err != nil {
		return nil, err
	}

	fileURL, err := s.storageService.UploadFile(ctx, file, buildPlanFilename(plan.ProfessionalID, plan.UserID, filename), "plans")
	if err != nil {
		return nil, err
	}

	updated, err := s.planRepo.SetTrainingPlanAttachment(ctx, plan.ID, fileURL)
	if err != nil {
		return nil, s.cleanupUpload(ctx, fileURL, err)
	}

	if plan.AttachmentURL != nil && *plan.AttachmentURL != fileURL {
		if err := s.storageService.DeleteFile(ctx, *plan.AttachmentURL); err != nil {
			logrus.WithError(err).WithField("plan_id", plan.ID).Warn("delete previous attachment")
		}
	}
	return updated, nil
}

func (s *PlanService) cleanupUpload(ctx context.Context, fileURL string, cause error) error {
	if cleanupErr := s.storageService.DeleteFile(ctx, fileURL); cleanupErr != nil {
		return errors.Join(cause, fmt.Errorf("cleanup failed: %w", cleanupErr))
	}
	return cause
}

func (s *PlanService) completeRequest(ctx context.Context, request *models.PlanRequest) {
	if request == nil {
		return
	}
	_, err := s.planRepo.UpdateRequestStatusIfCurrent(ctx, request.ID, request.Status, models.PlanRequestCompleted)
	if err != nil {
		logrus.WithError(err).WithField("request_id", request.ID).Warn("complete plan request")
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func professionalTypeForPlan(planType string) (string, bool) {
	switch planType {
	case models.PlanTypeTraining:
		return models.ProfessionalTypeCoach, true
	case models.PlanTypeNutrition:
		return models.ProfessionalTypeNutritionist, true
	default:
		return "", false
	}
}

func canAccessPlanRecord(role string, actorID, userID, professionalID int64) bool {
	switch role {
	case models.RoleUser:
		return actorID == userID
	case models.RoleProfessional:
		return actorID == professionalID
	default:
		return false
	}
}

func isPlanRequestStatus(status string) bool {
	switch status {
	case models.PlanRequestPending,
		models.PlanRequestAccepted,
		models.PlanRequestRejected,
		models.PlanRequestCompleted,
		models.PlanRequestCancelled:
		return true
	default:
		return false
	}
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accept", "accepted":
		return models.PlanRequestAccepted, nil
	case "reject", "rejected":
		return models.PlanRequestRejected, nil
	case "cancel", "cancelled", "canceled":
		return models.PlanRequestCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// validateRequestTransition: users may only cancel; professionals accept or
// reject pending requests. Completion happens when a plan is created.
func validateRequestTransition(role string, request *models.PlanRequest, nextStatus string) error {
	switch role {
	case models.RoleUser:
		if nextStatus != models.PlanRequestCancelled {
			return ErrForbidden
		}
		if request.Status != models.PlanRequestPending && request.Status != models.PlanRequestAccepted {
			return ErrInvalidStateTransition
		}
		return nil
	case models.RoleProfessional:
		switch nextStatus {
		case models.PlanRequestAccepted, models.PlanRequestRejected:
			if request.Status != models.PlanRequestPending {
				return ErrInvalidStateTransition
			}
			return nil
		default:
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
}

func trimmedOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func buildPlanFilename(professionalID int64, userID int64, original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%d-%d-%d%s", professionalID, userID, time.Now().UnixNano(), ext)
}
