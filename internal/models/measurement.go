package models

import "time"

type Anthropometry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	WeightKG   float64   `json:"weight_kg"`
	WaistCM    *float64  `json:"waist_cm"`
	NeckCM     *float64  `json:"neck_cm"`
	HipCM      *float64  `json:"hip_cm"`
	BodyFatPct *float64  `json:"body_fat_pct"`
	BMI        *float64  `json:"bmi"`
	MeasuredAt time.Time `json:"measured_at"`
	CreatedAt  time.Time `json:"created_at"`
}
