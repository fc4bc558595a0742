package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/pkg/fitness"
)

type anthropometryStore interface {
	Create(ctx context.Context, input repository.CreateAnthropometryInput) (*models.Anthropometry, error)
	List(ctx context.Context, filter repository.AnthropometryListFilter) ([]models.Anthropometry, int, error)
	Latest(ctx context.Context, userID int64) (*models.Anthropometry, error)
}

type personProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.PersonProfile, error)
}

type goalEvaluator interface {
	Evaluate(ctx context.Context, userID int64, weightKG float64, at time.Time) (*models.Goal, error)
}

type MeasurementService struct {
	anthropometryRepo anthropometryStore
	personProfileRepo personProfileReader
	goals             goalEvaluator
	now               func() time.Time
}

type RecordMeasurementInput struct {
	WeightKG   float64
	WaistCM    *float64
	NeckCM     *float64
	HipCM      *float64
	MeasuredAt *time.Time
}

type MeasurementResult struct {
	Measurement *models.Anthropometry `json:"measurement"`
	Goal        *models.Goal          `json:"goal,omitempty"`
}

func NewMeasurementService(
	anthropometryRepo anthropometryStore,
	personProfileRepo personProfileReader,
	goals goalEvaluator,
) *MeasurementService {
	return &MeasurementService{
		anthropometryRepo: anthropometryRepo,
		personProfileRepo: personProfileRepo,
		goals:             goals,
		now:               time.Now,
	}
}

// RecordMeasurement stores a snapshot with its body fat and BMI estimates,
// then re-evaluates the active goal. Estimates stay empty when the profile
// lacks sex or height.
func (s *MeasurementService) RecordMeasurement(
	ctx context.Context,
	userID int64,
	input RecordMeasurementInput,
) (*MeasurementResult, error) {
	if input.WeightKG <= 0 || input.WeightKG > 500 {
		return nil, ErrInvalidInput
	}
	for _, value := range []*float64{input.WaistCM, input.NeckCM, input.HipCM} {
		if value != nil && *value <= 0 {
			return nil, ErrInvalidInput
		}
	}

	measuredAt := s.now().UTC()
	if input.MeasuredAt != nil {
		if input.MeasuredAt.After(measuredAt.Add(5 * time.Minute)) {
			return nil, ErrInvalidInput
		}
		measuredAt = input.MeasuredAt.UTC()
	}

	profile, err := s.personProfileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load person profile: %w", err)
	}

	bodyFat, bmi := estimates(profile, input)
	measurement, err := s.anthropometryRepo.Create(ctx, repository.CreateAnthropometryInput{
		UserID:     userID,
		WeightKG:   input.WeightKG,
		WaistCM:    input.WaistCM,
		NeckCM:     input.NeckCM,
		HipCM:      input.HipCM,
		BodyFatPct: bodyFat,
		BMI:        bmi,
		MeasuredAt: measuredAt,
	})
	if err != nil {
		return nil, err
	}

	result := &MeasurementResult{Measurement: measurement}
	if s.goals == nil {
		return result, nil
	}
	goal, err := s.goals.Evaluate(ctx, userID, measurement.WeightKG, measurement.MeasuredAt)
	if err != nil {
		// the measurement is stored; goal state catches up on the next read
		logrus.WithError(err).WithField("user_id", userID).Warn("evaluate goal after measurement")
		return result, nil
	}
	result.Goal = goal
	return result, nil
}

func (s *MeasurementService) ListMeasurements(
	ctx context.Context,
	filter repository.AnthropometryListFilter,
) ([]models.Anthropometry, int, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, ErrInvalidInput
	}
	return s.anthropometryRepo.List(ctx, filter)
}

func (s *MeasurementService) LatestMeasurement(ctx context.Context, userID int64) (*models.Anthropometry, error) {
	latest, err := s.anthropometryRepo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return latest, nil
}

func estimates(profile *models.PersonProfile, input RecordMeasurementInput) (bodyFat *float64, bmi *float64) {
	if profile == nil || profile.HeightCM == nil {
		return nil, nil
	}
	height := *profile.HeightCM

	if value, ok := fitness.BMI(input.WeightKG, height); ok {
		bmi = &value
	}

	if profile.Sex == nil || input.WaistCM == nil || input.NeckCM == nil {
		return nil, bmi
	}
	hip := 0.0
	if input.HipCM != nil {
		hip = *input.HipCM
	}
	if value, ok := fitness.BodyFatNavy(*profile.Sex, height, *input.WaistCM, *input.NeckCM, hip); ok {
		bodyFat = &value
	}
	return bodyFat, bmi
}
