package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
)

// OnboardingHandler accepts the complete first-run profile in one request.
type OnboardingHandler struct {
	profileService profileUpdater
}

func NewOnboardingHandler(profileService profileUpdater) *OnboardingHandler {
	return &OnboardingHandler{profileService: profileService}
}

type personOnboardingRequest struct {
	FullName      string   `json:"full_name"`
	BirthDate     string   `json:"birth_date"`
	Sex           string   `json:"sex"`
	HeightCM      float64  `json:"height_cm"`
	ActivityLevel string   `json:"activity_level"`
	Goals         []string `json:"goals"`
}

type professionalOnboardingRequest struct {
	FullName        string   `json:"full_name"`
	Type            string   `json:"type"`
	Bio             string   `json:"bio"`
	Specializations []string `json:"specializations"`
	ExperienceYears int      `json:"experience_years"`
}

func (h *OnboardingHandler) PersonOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req personOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validatePersonOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	birthDate, _ := time.Parse(dateLayout, req.BirthDate)
	profile, err := h.profileService.UpdatePersonProfile(c.Context(), userID, repository.UpdatePersonProfileInput{
		FullName:      &req.FullName,
		BirthDate:     &birthDate,
		Sex:           &req.Sex,
		HeightCM:      &req.HeightCM,
		ActivityLevel: &req.ActivityLevel,
		Goals:         &req.Goals,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *OnboardingHandler) ProfessionalOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req professionalOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProfessionalOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdateProfessionalProfile(c.Context(), userID, repository.UpdateProfessionalProfileInput{
		FullName:        &req.FullName,
		Type:            &req.Type,
		Bio:             &req.Bio,
		Specializations: &req.Specializations,
		ExperienceYears: &req.ExperienceYears,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}
