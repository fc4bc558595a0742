package models

import "time"

type ProgressReport struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	PeriodStart       time.Time  `json:"period_start"`
	PeriodEnd         time.Time  `json:"period_end"`
	StartWeightKG     *float64   `json:"start_weight_kg"`
	EndWeightKG       *float64   `json:"end_weight_kg"`
	WeightChangeKG    *float64   `json:"weight_change_kg"`
	StartBodyFatPct   *float64   `json:"start_body_fat_pct"`
	EndBodyFatPct     *float64   `json:"end_body_fat_pct"`
	CaloriesConsumed  float64    `json:"calories_consumed"`
	CaloriesBurned    float64    `json:"calories_burned"`
	TotalSteps        int64      `json:"total_steps"`
	AverageDailySteps float64    `json:"average_daily_steps"`
	GoalID            *int64     `json:"goal_id"`
	GoalProgressPct   *float64   `json:"goal_progress_pct"`
	Feedback          []Feedback `json:"feedback"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Feedback struct {
	ID             int64     `json:"id"`
	ReportID       int64     `json:"report_id"`
	ProfessionalID int64     `json:"professional_id"`
	Comment        string    `json:"comment"`
	Rating         *int      `json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
}
