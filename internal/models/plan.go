package models

import "time"

const (
	PlanTypeTraining  = "training"
	PlanTypeNutrition = "nutrition"

	PlanRequestPending   = "pending"
	PlanRequestAccepted  = "accepted"
	PlanRequestRejected  = "rejected"
	PlanRequestCompleted = "completed"
	PlanRequestCancelled = "cancelled"
)

type PlanRequest struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ProfessionalID int64     `json:"professional_id"`
	PlanType       string    `json:"plan_type"`
	Message        *string   `json:"message"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TrainingPlan struct {
	ID              int64     `json:"id"`
	RequestID       *int64    `json:"request_id"`
	UserID          int64     `json:"user_id"`
	ProfessionalID  int64     `json:"professional_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	SessionsPerWeek int       `json:"sessions_per_week"`
	Weeks           int       `json:"weeks"`
	AttachmentURL   *string   `json:"-"`
	HasAttachment   bool      `json:"has_attachment"`
	CreatedAt       time.Time `json:"created_at"`
}

type NutritionPlan struct {
	ID             int64     `json:"id"`
	RequestID      *int64    `json:"request_id"`
	UserID         int64     `json:"user_id"`
	ProfessionalID int64     `json:"professional_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	DailyCalories  float64   `json:"daily_calories"`
	ProteinG       float64   `json:"protein_g"`
	CarbsG         float64   `json:"carbs_g"`
	FatG           float64   `json:"fat_g"`
	CreatedAt      time.Time `json:"created_at"`
}
