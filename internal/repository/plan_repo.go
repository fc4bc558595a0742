package repository

import (
	"context"
	"fmt"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type CreatePlanRequestInput struct {
	UserID         int64
	ProfessionalID int64
	PlanType       string
	Message        *string
}

type CreateTrainingPlanInput struct {
	RequestID       *int64
	UserID          int64
	ProfessionalID  int64
	Title           string
	Description     *string
	SessionsPerWeek int
	Weeks           int
	AttachmentURL   *string
}

type CreateNutritionPlanInput struct {
	RequestID      *int64
	UserID         int64
	ProfessionalID int64
	Title          string
	Description    *string
	DailyCalories  float64
	ProteinG       float64
	CarbsG         float64
	FatG           float64
}

type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

const planRequestColumns = `id, user_id, professional_id, plan_type, message, status, created_at, updated_at`

func (r *PlanRepository) CreateRequest(ctx context.Context, input CreatePlanRequestInput) (*models.PlanRequest, error) {
	query := `
		INSERT INTO plan_requests (user_id, professional_id, plan_type, message, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + planRequestColumns
	return scanPlanRequest(r.db.QueryRow(ctx, query, input.UserID, input.ProfessionalID, input.PlanType, input.Message))
}

func (r *PlanRepository) GetRequestByID(ctx context.Context, requestID int64) (*models.PlanRequest, error) {
	query := `SELECT ` + planRequestColumns + ` FROM plan_requests WHERE id = $1`
	return scanPlanRequest(r.db.QueryRow(ctx, query, requestID))
}

func (r *PlanRepository) ListRequests(
	ctx context.Context,
	actorID int64,
	role string,
	status string,
) ([]models.PlanRequest, error) {
	actorColumn := "user_id"
	if role == models.RoleProfessional {
		actorColumn = "professional_id"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM plan_requests
		WHERE %s = $1 AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
	`, planRequestColumns, actorColumn)

	rows, err := r.db.Query(ctx, query, actorID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.PlanRequest, 0)
	for rows.Next() {
		request, err := scanPlanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PlanRepository) UpdateRequestStatusIfCurrent(
	ctx context.Context,
	requestID int64,
	currentStatus string,
	nextStatus string,
) (*models.PlanRequest, error) {
	query := `
		UPDATE plan_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + planRequestColumns
	return scanPlanRequest(r.db.QueryRow(ctx, query, requestID, currentStatus, nextStatus))
}

const trainingPlanColumns = `id, request_id, user_id, professional_id, title, description,
		sessions_per_week, weeks, attachment_url, created_at`

func (r *PlanRepository) CreateTrainingPlan(
	ctx context.Context,
	input CreateTrainingPlanInput,
) (*models.TrainingPlan, error) {
	query := `
		INSERT INTO training_plans (request_id, user_id, professional_id, title, description, sessions_per_week,
			weeks, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + trainingPlanColumns
	return scanTrainingPlan(r.db.QueryRow(ctx, query,
		input.RequestID,
		input.UserID,
		input.ProfessionalID,
		input.Title,
		input.Description,
		input.SessionsPerWeek,
		input.Weeks,
		input.AttachmentURL,
	))
}

func (r *PlanRepository) GetTrainingPlan(ctx context.Context, planID int64) (*models.TrainingPlan, error) {
	query := `SELECT ` + trainingPlanColumns + ` FROM training_plans WHERE id = $1`
	return scanTrainingPlan(r.db.QueryRow(ctx, query, planID))
}

func (r *PlanRepository) SetTrainingPlanAttachment(
	ctx context.Context,
	planID int64,
	attachmentURL string,
) (*models.TrainingPlan, error) {
	query := `
		UPDATE training_plans
		SET attachment_url = $2
		WHERE id = $1
		RETURNING ` + trainingPlanColumns
	return scanTrainingPlan(r.db.QueryRow(ctx, query, planID, attachmentURL))
}

func (r *PlanRepository) ListTrainingPlans(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.TrainingPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM training_plans
		WHERE %s = $1
		ORDER BY created_at DESC, id DESC
	`, trainingPlanColumns, planActorColumn(role))

	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.TrainingPlan, 0)
	for rows.Next() {
		plan, err := scanTrainingPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

const nutritionPlanColumns = `id, request_id, user_id, professional_id, title, description,
		daily_calories, protein_g, carbs_g, fat_g, created_at`

func (r *PlanRepository) CreateNutritionPlan(
	ctx context.Context,
	input CreateNutritionPlanInput,
) (*models.NutritionPlan, error) {
	query := `
		INSERT INTO nutrition_plans (request_id, user_id, professional_id, title, description,
			daily_calories, protein_g, carbs_g, fat_g)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + nutritionPlanColumns
	return scanNutritionPlan(r.db.QueryRow(ctx, query,
		input.RequestID,
		input.UserID,
		input.ProfessionalID,
		input.Title,
		input.Description,
		input.DailyCalories,
		input.ProteinG,
		input.CarbsG,
		input.FatG,
	))
}

func (r *PlanRepository) GetNutritionPlan(ctx context.Context, planID int64) (*models.NutritionPlan, error) {
	query := `SELECT ` + nutritionPlanColumns + ` FROM nutrition_plans WHERE id = $1`
	return scanNutritionPlan(r.db.QueryRow(ctx, query, planID))
}

func (r *PlanRepository) ListNutritionPlans(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.NutritionPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM nutrition_plans
		WHERE %s = $1
		ORDER BY created_at DESC, id DESC
	`, nutritionPlanColumns, planActorColumn(role))

	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.NutritionPlan, 0)
	for rows.Next() {
		plan, err := scanNutritionPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func planActorColumn(role string) string {
	if role == models.RoleProfessional {
		return "professional_id"
	}
	return "user_id"
}

func scanPlanRequest(row rowScanner) (*models.PlanRequest, error) {
	var request models.PlanRequest
	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.ProfessionalID,
		&request.PlanType,
		&request.Message,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func scanTrainingPlan(row rowScanner) (*models.TrainingPlan, error) {
	var plan models.TrainingPlan
	err := row.Scan(
		&plan.ID,
		&plan.RequestID,
		&plan.UserID,
		&plan.ProfessionalID,
		&plan.Title,
		&plan.Description,
		&plan.SessionsPerWeek,
		&plan.Weeks,
		&plan.AttachmentURL,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	plan.HasAttachment = plan.AttachmentURL != nil && *plan.AttachmentURL != ""
	return &plan, nil
}

func scanNutritionPlan(row rowScanner) (*models.NutritionPlan, error) {
	var plan models.NutritionPlan
	err := row.Scan(
		&plan.ID,
		&plan.RequestID,
		&plan.UserID,
		&plan.ProfessionalID,
		&plan.Title,
		&plan.Description,
		&plan.DailyCalories,
		&plan.ProteinG,
		&plan.CarbsG,
		&plan.FatG,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
