package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type professionalMatchmaker interface {
	GetRecommendedProfessionals(
		ctx context.Context,
		personProfile *models.PersonProfile,
		professionalType string,
		limit int,
	) ([]models.ProfessionalWithScore, error)
}

type associationManager interface {
	AssociateProfessional(ctx context.Context, userID, professionalID int64) (*models.ProfessionalLink, error)
	RemoveProfessional(ctx context.Context, userID int64, linkType string) error
	ListProfessionals(ctx context.Context, userID int64) (map[string]int64, error)
	ListClients(ctx context.Context, professionalID int64) ([]models.Client, error)
}

type professionalListResponse struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"user_id"`
	FullName        string   `json:"full_name"`
	Type            string   `json:"type"`
	Bio             string   `json:"bio"`
	Specializations []string `json:"specializations"`
	ExperienceYears int      `json:"experience_years"`
	Rating          float64  `json:"rating"`
	MatchScore      int      `json:"match_score,omitempty"`
}

// ProfessionalHandler serves professional discovery and the user's
// professionals map.
type ProfessionalHandler struct {
	personProfileRepo  personProfileStore
	matchmakingService professionalMatchmaker
	associations       associationManager
}

func NewProfessionalHandler(
	personProfileRepo personProfileStore,
	matchmakingService professionalMatchmaker,
	associations associationManager,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		personProfileRepo:  personProfileRepo,
		matchmakingService: matchmakingService,
		associations:       associations,
	}
}

type associateProfessionalRequest struct {
	ProfessionalID int64 `json:"professional_id"`
}

func (h *ProfessionalHandler) GetRecommendedProfessionals(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	professionalType := strings.ToLower(strings.TrimSpace(c.Query("type")))
	if professionalType != "" {
		if validationErr := validateProfessionalType(professionalType); validationErr != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
		}
	}
	_, limit := pageParams("", c.Query("limit"))

	personProfile, err := h.personProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user profile"})
	}

	professionals, err := h.matchmakingService.GetRecommendedProfessionals(c.Context(), personProfile, professionalType, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch recommended professionals"})
	}

	response := make([]professionalListResponse, 0, len(professionals))
	for _, professional := range professionals {
		response = append(response, buildProfessionalListResponse(professional.ProfessionalProfile, professional.MatchScore))
	}

	return c.JSON(fiber.Map{"professionals": response})
}

func (h *ProfessionalHandler) AssociateProfessional(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req associateProfessionalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ProfessionalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "professional_id must be a positive integer"})
	}

	link, err := h.associations.AssociateProfessional(c.Context(), userID, req.ProfessionalID)
	if err != nil {
		return mapAssociationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"link": link})
}

func (h *ProfessionalHandler) RemoveProfessional(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	linkType := strings.ToLower(strings.TrimSpace(c.Params("type")))
	if err := h.associations.RemoveProfessional(c.Context(), userID, linkType); err != nil {
		return mapAssociationError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfessionalHandler) ListProfessionals(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	professionals, err := h.associations.ListProfessionals(c.Context(), userID)
	if err != nil {
		return mapAssociationError(c, err)
	}

	return c.JSON(fiber.Map{"professionals": professionals})
}

func (h *ProfessionalHandler) ListClients(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleProfessional {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	professionalID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	clients, err := h.associations.ListClients(c.Context(), professionalID)
	if err != nil {
		return mapAssociationError(c, err)
	}

	return c.JSON(fiber.Map{"clients": clients})
}

func buildProfessionalListResponse(professional models.ProfessionalProfile, matchScore int) professionalListResponse {
	return professionalListResponse{
		ID:              professional.ID,
		UserID:          professional.UserID,
		FullName:        stringValue(professional.FullName),
		Type:            stringValue(professional.Type),
		Bio:             stringValue(professional.Bio),
		Specializations: stringSliceValue(professional.Specializations),
		ExperienceYears: intValueResponse(professional.ExperienceYears),
		Rating:          floatValueResponse(professional.Rating),
		MatchScore:      matchScore,
	}
}

func mapAssociationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrProfessionalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
	case errors.Is(err, services.ErrProfileIncomplete):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Professional has not completed onboarding"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No professional of that type is associated"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process professional request"})
	}
}
