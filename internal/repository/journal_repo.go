package repository

import (
	"context"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type CreateMealInput struct {
	UserID   int64
	Name     string
	MealType string
	Calories float64
	EatenAt  time.Time
}

type CreateActivityInput struct {
	UserID          int64
	ActivityType    string
	DurationMinutes int
	CaloriesBurned  float64
	PerformedAt     time.Time
}

type MealRepository struct {
	db DBTX
}

func NewMealRepository(db DBTX) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) Create(ctx context.Context, input CreateMealInput) (*models.Meal, error) {
	query := `
		INSERT INTO meals (user_id, name, meal_type, calories, eaten_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, meal_type, calories, eaten_at, created_at
	`
	var meal models.Meal
	err := r.db.QueryRow(ctx, query, input.UserID, input.Name, input.MealType, input.Calories, input.EatenAt).Scan(
		&meal.ID,
		&meal.UserID,
		&meal.Name,
		&meal.MealType,
		&meal.Calories,
		&meal.EatenAt,
		&meal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *MealRepository) ListRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Meal, error) {
	query := `
		SELECT id, user_id, name, meal_type, calories, eaten_at, created_at
		FROM meals
		WHERE user_id = $1 AND eaten_at >= $2 AND eaten_at < $3
		ORDER BY eaten_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]models.Meal, 0)
	for rows.Next() {
		var meal models.Meal
		if err := rows.Scan(
			&meal.ID,
			&meal.UserID,
			&meal.Name,
			&meal.MealType,
			&meal.Calories,
			&meal.EatenAt,
			&meal.CreatedAt,
		); err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *MealRepository) Delete(ctx context.Context, userID, mealID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM meals WHERE id = $1 AND user_id = $2`, mealID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MealRepository) SumCalories(ctx context.Context, userID int64, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(calories), 0)
		FROM meals
		WHERE user_id = $1 AND eaten_at >= $2 AND eaten_at < $3
	`
	var total float64
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

type ActivityRepository struct {
	db DBTX
}

func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, input CreateActivityInput) (*models.PhysicalActivity, error) {
	query := `
		INSERT INTO physical_activities (user_id, activity_type, duration_min, calories_burned, performed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, activity_type, duration_min, calories_burned, performed_at, created_at
	`
	var activity models.PhysicalActivity
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.ActivityType,
		input.DurationMinutes,
		input.CaloriesBurned,
		input.PerformedAt,
	).Scan(
		&activity.ID,
		&activity.UserID,
		&activity.ActivityType,
		&activity.DurationMinutes,
		&activity.CaloriesBurned,
		&activity.PerformedAt,
		&activity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) ListRange(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]models.PhysicalActivity, error) {
	query := `
		SELECT id, user_id, activity_type, duration_min, calories_burned, performed_at, created_at
		FROM physical_activities
		WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		ORDER BY performed_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]models.PhysicalActivity, 0)
	for rows.Next() {
		var activity models.PhysicalActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.ActivityType,
			&activity.DurationMinutes,
			&activity.CaloriesBurned,
			&activity.PerformedAt,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, userID, activityID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM physical_activities WHERE id = $1 AND user_id = $2`, activityID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ActivityRepository) SumCaloriesBurned(ctx context.Context, userID int64, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(calories_burned), 0)
		FROM physical_activities
		WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
	`
	var total float64
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
