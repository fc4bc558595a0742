package handlers

import (
	"strings"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

var allowedSexes = map[string]struct{}{
	"male":   {},
	"female": {},
}

var allowedActivityLevels = map[string]struct{}{
	"sedentary":   {},
	"light":       {},
	"moderate":    {},
	"active":      {},
	"very_active": {},
}

var allowedProfessionalTypes = map[string]struct{}{
	models.ProfessionalTypeCoach:        {},
	models.ProfessionalTypeNutritionist: {},
}

func validatePersonOnboardingRequest(req personOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if err := validateBirthDate(req.BirthDate); err != "" {
		return err
	}
	if err := validateSex(req.Sex); err != "" {
		return err
	}
	if req.HeightCM <= 0 || req.HeightCM > 300 {
		return "height_cm must be between 0 and 300"
	}
	if err := validateActivityLevel(req.ActivityLevel); err != "" {
		return err
	}
	if len(req.Goals) == 0 {
		return "goals must contain at least one item"
	}
	return validateNonEmptyValues("goals", req.Goals)
}

func validateProfessionalOnboardingRequest(req professionalOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if err := validateProfessionalType(req.Type); err != "" {
		return err
	}
	if strings.TrimSpace(req.Bio) == "" {
		return "bio is required"
	}
	if len(req.Specializations) == 0 {
		return "specializations must contain at least one item"
	}
	if err := validateNonEmptyValues("specializations", req.Specializations); err != "" {
		return err
	}
	if req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	return ""
}

func validatePersonProfileUpdateRequest(req updatePersonProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.BirthDate != nil {
		if err := validateBirthDate(*req.BirthDate); err != "" {
			return err
		}
	}
	if req.Sex != nil {
		if err := validateSex(*req.Sex); err != "" {
			return err
		}
	}
	if req.HeightCM != nil && (*req.HeightCM <= 0 || *req.HeightCM > 300) {
		return "height_cm must be between 0 and 300"
	}
	if req.ActivityLevel != nil {
		if err := validateActivityLevel(*req.ActivityLevel); err != "" {
			return err
		}
	}
	if req.Goals != nil {
		return validateNonEmptyValues("goals", *req.Goals)
	}
	return ""
}

func validateProfessionalProfileUpdateRequest(req updateProfessionalProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Type != nil {
		if err := validateProfessionalType(*req.Type); err != "" {
			return err
		}
	}
	if req.Bio != nil && strings.TrimSpace(*req.Bio) == "" {
		return "bio must not be empty"
	}
	if req.Specializations != nil {
		if err := validateNonEmptyValues("specializations", *req.Specializations); err != "" {
			return err
		}
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	return ""
}

func validateBirthDate(raw string) string {
	birthDate, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "birth_date must use YYYY-MM-DD"
	}
	if birthDate.After(time.Now()) {
		return "birth_date must be in the past"
	}
	return ""
}

func validateSex(sex string) string {
	if _, ok := allowedSexes[strings.ToLower(strings.TrimSpace(sex))]; !ok {
		return "sex must be one of: male, female"
	}
	return ""
}

func validateActivityLevel(level string) string {
	if _, ok := allowedActivityLevels[strings.TrimSpace(level)]; !ok {
		return "activity_level must be one of: sedentary, light, moderate, active, very_active"
	}
	return ""
}

func validateProfessionalType(professionalType string) string {
	if _, ok := allowedProfessionalTypes[strings.ToLower(strings.TrimSpace(professionalType))]; !ok {
		return "type must be one of: coach, nutritionist"
	}
	return ""
}

func validateNonEmptyValues(field string, values []string) string {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return field + " must not contain empty values"
		}
	}
	return ""
}
