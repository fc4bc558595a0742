package services

import (
	"context"
	"strings"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
)

type PersonProfileUpdater interface {
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdatePersonProfileInput) (*models.PersonProfile, error)
}

type ProfessionalProfileUpdater interface {
	UpdatePartial(
		ctx context.Context,
		userID int64,
		req repository.UpdateProfessionalProfileInput,
	) (*models.ProfessionalProfile, error)
}

type ProfileService struct {
	personProfileRepo       PersonProfileUpdater
	professionalProfileRepo ProfessionalProfileUpdater
}

func NewProfileService(
	personProfileRepo PersonProfileUpdater,
	professionalProfileRepo ProfessionalProfileUpdater,
) *ProfileService {
	return &ProfileService{
		personProfileRepo:       personProfileRepo,
		professionalProfileRepo: professionalProfileRepo,
	}
}

func (s *ProfileService) UpdatePersonProfile(
	ctx context.Context,
	userID int64,
	req repository.UpdatePersonProfileInput,
) (*models.PersonProfile, error) {
	if req.Sex != nil {
		sex := strings.ToLower(strings.TrimSpace(*req.Sex))
		req.Sex = &sex
	}
	return s.personProfileRepo.UpdatePartial(ctx, userID, req)
}

func (s *ProfileService) UpdateProfessionalProfile(
	ctx context.Context,
	userID int64,
	req repository.UpdateProfessionalProfileInput,
) (*models.ProfessionalProfile, error) {
	if req.Type != nil {
		professionalType := strings.ToLower(strings.TrimSpace(*req.Type))
		req.Type = &professionalType
	}
	return s.professionalProfileRepo.UpdatePartial(ctx, userID, req)
}
