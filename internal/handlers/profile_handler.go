package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
)

type personProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.PersonProfile, error)
}

type professionalProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ProfessionalProfile, error)
}

type profileUpdater interface {
	UpdatePersonProfile(
		ctx context.Context,
		userID int64,
		req repository.UpdatePersonProfileInput,
	) (*models.PersonProfile, error)
	UpdateProfessionalProfile(
		ctx context.Context,
		userID int64,
		req repository.UpdateProfessionalProfileInput,
	) (*models.ProfessionalProfile, error)
}

type ProfileHandler struct {
	profileService          profileUpdater
	personProfileRepo       personProfileStore
	professionalProfileRepo professionalProfileStore
}

func NewProfileHandler(
	profileService profileUpdater,
	personProfileRepo personProfileStore,
	professionalProfileRepo professionalProfileStore,
) *ProfileHandler {
	return &ProfileHandler{
		profileService:          profileService,
		personProfileRepo:       personProfileRepo,
		professionalProfileRepo: professionalProfileRepo,
	}
}

type updatePersonProfileRequest struct {
	FullName      *string   `json:"full_name"`
	BirthDate     *string   `json:"birth_date"`
	Sex           *string   `json:"sex"`
	HeightCM      *float64  `json:"height_cm"`
	ActivityLevel *string   `json:"activity_level"`
	Goals         *[]string `json:"goals"`
}

type updateProfessionalProfileRequest struct {
	FullName        *string   `json:"full_name"`
	Type            *string   `json:"type"`
	Bio             *string   `json:"bio"`
	Specializations *[]string `json:"specializations"`
	ExperienceYears *int      `json:"experience_years"`
}

func (h *ProfileHandler) GetPersonProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.personProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *ProfileHandler) UpdatePersonProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updatePersonProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validatePersonProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	input := repository.UpdatePersonProfileInput{
		FullName:      req.FullName,
		Sex:           req.Sex,
		HeightCM:      req.HeightCM,
		ActivityLevel: req.ActivityLevel,
		Goals:         req.Goals,
	}
	if req.BirthDate != nil {
		birthDate, _ := time.Parse(dateLayout, *req.BirthDate)
		input.BirthDate = &birthDate
	}

	profile, err := h.profileService.UpdatePersonProfile(c.Context(), userID, input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *ProfileHandler) GetProfessionalProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.professionalProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *ProfileHandler) UpdateProfessionalProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfessionalProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProfessionalProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdateProfessionalProfile(c.Context(), userID, repository.UpdateProfessionalProfileInput{
		FullName:        req.FullName,
		Type:            req.Type,
		Bio:             req.Bio,
		Specializations: req.Specializations,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}
