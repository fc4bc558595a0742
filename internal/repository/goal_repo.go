package repository

import (
	"context"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type CreateGoalInput struct {
	UserID         int64
	StartWeightKG  float64
	TargetWeightKG float64
	Direction      string
	Deadline       time.Time
}

type GoalListFilter struct {
	UserID    int64
	Active    *bool
	Fulfilled *bool
}

type GoalRepository struct {
	db DBTX
}

func NewGoalRepository(db DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, start_weight_kg, target_weight_kg, direction, deadline,
		active, fulfilled, fulfilled_at, created_at, updated_at`

func (r *GoalRepository) Create(ctx context.Context, input CreateGoalInput) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, start_weight_kg, target_weight_kg, direction, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query,
		input.UserID,
		input.StartWeightKG,
		input.TargetWeightKG,
		input.Direction,
		input.Deadline,
	))
}

func (r *GoalRepository) DeactivateAll(ctx context.Context, userID int64) error {
	query := `UPDATE goals SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND active = TRUE`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *GoalRepository) GetActive(ctx context.Context, userID int64) (*models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return scanGoal(r.db.QueryRow(ctx, query, userID))
}

func (r *GoalRepository) GetByID(ctx context.Context, goalID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	return scanGoal(r.db.QueryRow(ctx, query, goalID))
}

func (r *GoalRepository) List(ctx context.Context, filter GoalListFilter) ([]models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
		  AND ($2::boolean IS NULL OR active = $2)
		  AND ($3::boolean IS NULL OR fulfilled = $3)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, filter.UserID, filter.Active, filter.Fulfilled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

// MarkFulfilled only touches goals that are still active and unfulfilled.
func (r *GoalRepository) MarkFulfilled(ctx context.Context, goalID int64, at time.Time) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET fulfilled = TRUE, fulfilled_at = $2, active = FALSE, updated_at = NOW()
		WHERE id = $1 AND active = TRUE AND fulfilled = FALSE
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query, goalID, at))
}

func (r *GoalRepository) Deactivate(ctx context.Context, goalID int64) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND active = TRUE
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query, goalID))
}

func scanGoal(row rowScanner) (*models.Goal, error) {
	var goal models.Goal
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.StartWeightKG,
		&goal.TargetWeightKG,
		&goal.Direction,
		&goal.Deadline,
		&goal.Active,
		&goal.Fulfilled,
		&goal.FulfilledAt,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}
