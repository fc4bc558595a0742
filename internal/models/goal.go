package models

import "time"

const (
	GoalDirectionGain = "gain"
	GoalDirectionLose = "lose"
)

type Goal struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	StartWeightKG  float64    `json:"start_weight_kg"`
	TargetWeightKG float64    `json:"target_weight_kg"`
	Direction      string     `json:"direction"`
	Deadline       time.Time  `json:"deadline"`
	Active         bool       `json:"active"`
	Fulfilled      bool       `json:"fulfilled"`
	FulfilledAt    *time.Time `json:"fulfilled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type GoalProgress struct {
	Goal
	CurrentWeightKG *float64 `json:"current_weight_kg"`
	ProgressPct     float64  `json:"progress_pct"`
	Expired         bool     `json:"expired"`
}
