package repository

import (
	"context"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type CreateFeedbackInput struct {
	ReportID       int64
	ProfessionalID int64
	Comment        string
	Rating         *int
}

type ReportRepository struct {
	db DBTX
}

func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, user_id, period_start, period_end, start_weight_kg, end_weight_kg, weight_change_kg,
		start_body_fat_pct, end_body_fat_pct, calories_consumed, calories_burned, total_steps,
		average_daily_steps, goal_id, goal_progress_pct, created_at`

func (r *ReportRepository) Create(ctx context.Context, report *models.ProgressReport) (*models.ProgressReport, error) {
	query := `
		INSERT INTO progress_reports (user_id, period_start, period_end, start_weight_kg, end_weight_kg,
			weight_change_kg, start_body_fat_pct, end_body_fat_pct, calories_consumed, calories_burned,
			total_steps, average_daily_steps, goal_id, goal_progress_pct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + reportColumns
	return scanReport(r.db.QueryRow(ctx, query,
		report.UserID,
		report.PeriodStart,
		report.PeriodEnd,
		report.StartWeightKG,
		report.EndWeightKG,
		report.WeightChangeKG,
		report.StartBodyFatPct,
		report.EndBodyFatPct,
		report.CaloriesConsumed,
		report.CaloriesBurned,
		report.TotalSteps,
		report.AverageDailySteps,
		report.GoalID,
		report.GoalProgressPct,
	))
}

func (r *ReportRepository) GetByID(ctx context.Context, reportID int64) (*models.ProgressReport, error) {
	query := `SELECT ` + reportColumns + ` FROM progress_reports WHERE id = $1`
	return scanReport(r.db.QueryRow(ctx, query, reportID))
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID int64) ([]models.ProgressReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM progress_reports
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]models.ProgressReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) CreateFeedback(ctx context.Context, input CreateFeedbackInput) (*models.Feedback, error) {
	query := `
		INSERT INTO feedbacks (report_id, professional_id, comment, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, report_id, professional_id, comment, rating, created_at
	`
	var feedback models.Feedback
	err := r.db.QueryRow(ctx, query, input.ReportID, input.ProfessionalID, input.Comment, input.Rating).Scan(
		&feedback.ID,
		&feedback.ReportID,
		&feedback.ProfessionalID,
		&feedback.Comment,
		&feedback.Rating,
		&feedback.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *ReportRepository) ListFeedbackByReportIDs(
	ctx context.Context,
	reportIDs []int64,
) (map[int64][]models.Feedback, error) {
	result := make(map[int64][]models.Feedback, len(reportIDs))
	if len(reportIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, report_id, professional_id, comment, rating, created_at
		FROM feedbacks
		WHERE report_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, reportIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var feedback models.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.ReportID,
			&feedback.ProfessionalID,
			&feedback.Comment,
			&feedback.Rating,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[feedback.ReportID] = append(result[feedback.ReportID], feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanReport(row rowScanner) (*models.ProgressReport, error) {
	var report models.ProgressReport
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.StartWeightKG,
		&report.EndWeightKG,
		&report.WeightChangeKG,
		&report.StartBodyFatPct,
		&report.EndBodyFatPct,
		&report.CaloriesConsumed,
		&report.CaloriesBurned,
		&report.TotalSteps,
		&report.AverageDailySteps,
		&report.GoalID,
		&report.GoalProgressPct,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Feedback = []models.Feedback{}
	return &report, nil
}
