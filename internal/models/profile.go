package models

import "time"

const (
	ProfessionalTypeCoach        = "coach"
	ProfessionalTypeNutritionist = "nutritionist"
)

type PersonProfile struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	FullName           *string    `json:"full_name"`
	BirthDate          *time.Time `json:"birth_date"`
	Sex                *string    `json:"sex"`
	HeightCM           *float64   `json:"height_cm"`
	ActivityLevel      *string    `json:"activity_level"`
	Goals              *[]string  `json:"goals"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ProfessionalProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	Type               *string   `json:"type"`
	Bio                *string   `json:"bio"`
	Specializations    *[]string `json:"specializations"`
	ExperienceYears    *int      `json:"experience_years"`
	Rating             *float64  `json:"rating"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProfessionalLink is one entry of a user's professionals map, keyed by type.
type ProfessionalLink struct {
	UserID         int64     `json:"user_id"`
	Type           string    `json:"type"`
	ProfessionalID int64     `json:"professional_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProfessionalWithScore struct {
	ProfessionalProfile
	MatchScore int `json:"match_score"`
}

type Client struct {
	UserID   int64   `json:"user_id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	LinkType string  `json:"link_type"`
}
