package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type professionalLinkStore interface {
	Upsert(ctx context.Context, userID int64, linkType string, professionalID int64) (*models.ProfessionalLink, error)
	Delete(ctx context.Context, userID int64, linkType string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ProfessionalLink, error)
	IsLinked(ctx context.Context, userID, professionalID int64) (bool, error)
	ListClients(ctx context.Context, professionalID int64, linkType string) ([]models.Client, error)
}

type professionalProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ProfessionalProfile, error)
}

// AssociationService manages the user's professionals map: at most one
// professional per type.
type AssociationService struct {
	linkRepo                professionalLinkStore
	professionalProfileRepo professionalProfileReader
}

func NewAssociationService(
	linkRepo professionalLinkStore,
	professionalProfileRepo professionalProfileReader,
) *AssociationService {
	return &AssociationService{
		linkRepo:                linkRepo,
		professionalProfileRepo: professionalProfileRepo,
	}
}

func (s *AssociationService) AssociateProfessional(
	ctx context.Context,
	userID int64,
	professionalID int64,
) (*models.ProfessionalLink, error) {
	if userID <= 0 || professionalID <= 0 || userID == professionalID {
		return nil, ErrInvalidInput
	}

	profile, err := s.professionalProfileRepo.GetByUserID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("load professional profile: %w", err)
	}
	if !profile.OnboardingComplete || profile.Type == nil || !isProfessionalType(*profile.Type) {
		return nil, ErrProfileIncomplete
	}

	link, err := s.linkRepo.Upsert(ctx, userID, *profile.Type, professionalID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":         userID,
			"professional_id": professionalID,
		}).Error("associate professional")
		return nil, fmt.Errorf("store professional link: %w", err)
	}
	return link, nil
}

func (s *AssociationService) RemoveProfessional(ctx context.Context, userID int64, linkType string) error {
	if !isProfessionalType(linkType) {
		return ErrInvalidInput
	}
	removed, err := s.linkRepo.Delete(ctx, userID, linkType)
	if err != nil {
		return fmt.Errorf("remove professional link: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// ListProfessionals returns the map professional type -> professional id.
func (s *AssociationService) ListProfessionals(ctx context.Context, userID int64) (map[string]int64, error) {
	links, err := s.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	professionals := make(map[string]int64, len(links))
	for _, link := range links {
		professionals[link.Type] = link.ProfessionalID
	}
	return professionals, nil
}

func (s *AssociationService) ListClients(ctx context.Context, professionalID int64) ([]models.Client, error) {
	profile, err := s.professionalProfileRepo.GetByUserID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}
	if profile.Type == nil || !isProfessionalType(*profile.Type) {
		return []models.Client{}, nil
	}
	return s.linkRepo.ListClients(ctx, professionalID, *profile.Type)
}

// EnsureLinked is the access check used before a professional reads or
// writes client data.
func (s *AssociationService) EnsureLinked(ctx context.Context, userID, professionalID int64) error {
	linked, err := s.linkRepo.IsLinked(ctx, userID, professionalID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrNotAssociated
	}
	return nil
}

func isProfessionalType(value string) bool {
	return value == models.ProfessionalTypeCoach || value == models.ProfessionalTypeNutritionist
}
