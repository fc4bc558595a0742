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

type goalStore interface {
	GetActive(ctx context.Context, userID int64) (*models.Goal, error)
	GetByID(ctx context.Context, goalID int64) (*models.Goal, error)
	List(ctx context.Context, filter repository.GoalListFilter) ([]models.Goal, error)
	MarkFulfilled(ctx context.Context, goalID int64, at time.Time) (*models.Goal, error)
	Deactivate(ctx context.Context, goalID int64) (*models.Goal, error)
}

type latestMeasurementReader interface {
	Latest(ctx context.Context, userID int64) (*models.Anthropometry, error)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type GoalService struct {
	db              txBeginner
	goalRepo        goalStore
	measurementRepo latestMeasurementReader
	loc             *time.Location
	now             func() time.Time
}

type CreateGoalInput struct {
	StartWeightKG  *float64
	TargetWeightKG float64
	Direction      string
	Deadline       time.Time
}

func NewGoalService(
	db txBeginner,
	goalRepo goalStore,
	measurementRepo latestMeasurementReader,
	loc *time.Location,
) *GoalService {
	if loc == nil {
		loc = time.UTC
	}
	return &GoalService{
		db:              db,
		goalRepo:        goalRepo,
		measurementRepo: measurementRepo,
		loc:             loc,
		now:             time.Now,
	}
}

// CreateGoal replaces the user's active goal. Without an explicit start
// weight the latest measurement is used.
func (s *GoalService) CreateGoal(ctx context.Context, userID int64, input CreateGoalInput) (*models.Goal, error) {
	if input.TargetWeightKG <= 0 || input.Deadline.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.StartWeightKG != nil && *input.StartWeightKG <= 0 {
		return nil, ErrInvalidInput
	}
	if fitness.IsGoalExpired(input.Deadline, false, s.now(), s.loc) {
		return nil, ErrInvalidInput
	}

	startWeight := input.StartWeightKG
	if startWeight == nil {
		latest, err := s.measurementRepo.Latest(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidInput
			}
			return nil, fmt.Errorf("load latest measurement: %w", err)
		}
		startWeight = &latest.WeightKG
	}

	direction := input.Direction
	switch direction {
	case "":
		direction = fitness.DirectionFor(*startWeight, input.TargetWeightKG)
	case models.GoalDirectionGain:
		if input.TargetWeightKG < *startWeight {
			return nil, ErrInvalidInput
		}
	case models.GoalDirectionLose:
		if input.TargetWeightKG > *startWeight {
			return nil, ErrInvalidInput
		}
	default:
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txGoalRepo := repository.NewGoalRepository(tx)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return nil, err
	}
	if err := txGoalRepo.DeactivateAll(ctx, userID); err != nil {
		return nil, err
	}

	goal, err := txGoalRepo.Create(ctx, repository.CreateGoalInput{
		UserID:         userID,
		StartWeightKG:  *startWeight,
		TargetWeightKG: input.TargetWeightKG,
		Direction:      direction,
		Deadline:       dateOnly(input.Deadline, s.loc),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) ListGoals(ctx context.Context, userID int64, active, fulfilled *bool) ([]models.Goal, error) {
	if _, err := s.ExpireIfDue(ctx, userID); err != nil {
		return nil, err
	}
	return s.goalRepo.List(ctx, repository.GoalListFilter{
		UserID:    userID,
		Active:    active,
		Fulfilled: fulfilled,
	})
}

// ActiveProgress reports progress of the active goal against the latest
// measurement.
func (s *GoalService) ActiveProgress(ctx context.Context, userID int64) (*models.GoalProgress, error) {
	if _, err := s.ExpireIfDue(ctx, userID); err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	progress := &models.GoalProgress{Goal: *goal}
	latest, err := s.measurementRepo.Latest(ctx, userID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return progress, nil
	case err != nil:
		return nil, err
	}

	progress.CurrentWeightKG = &latest.WeightKG
	progress.ProgressPct = fitness.GoalProgressPct(goal.StartWeightKG, goal.TargetWeightKG, latest.WeightKG)
	return progress, nil
}

// Evaluate applies a new weight to the active goal: it is marked fulfilled
// when the weight reaches the target within the tolerance, or deactivated
// once the deadline has passed.
func (s *GoalService) Evaluate(ctx context.Context, userID int64, weightKG float64, at time.Time) (*models.Goal, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if fitness.IsGoalFulfilled(goal.Direction, goal.TargetWeightKG, weightKG) &&
		!fitness.IsGoalExpired(goal.Deadline, false, at, s.loc) {
		fulfilled, err := s.goalRepo.MarkFulfilled(ctx, goal.ID, at)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return goal, nil
			}
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "goal_id": goal.ID}).Info("goal fulfilled")
		return fulfilled, nil
	}

	if fitness.IsGoalExpired(goal.Deadline, goal.Fulfilled, s.now(), s.loc) {
		return s.deactivate(ctx, goal)
	}
	return goal, nil
}

// ExpireIfDue deactivates the active goal when its deadline passed unfulfilled.
func (s *GoalService) ExpireIfDue(ctx context.Context, userID int64) (*models.Goal, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !fitness.IsGoalExpired(goal.Deadline, goal.Fulfilled, s.now(), s.loc) {
		return nil, nil
	}
	return s.deactivate(ctx, goal)
}

func (s *GoalService) CancelGoal(ctx context.Context, userID, goalID int64) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, notFound(err)
	}
	if goal.UserID != userID {
		return nil, ErrForbidden
	}
	if !goal.Active {
		return nil, ErrInvalidStateTransition
	}
	return s.deactivate(ctx, goal)
}

func (s *GoalService) deactivate(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	updated, err := s.goalRepo.Deactivate(ctx, goal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal, nil
		}
		return nil, err
	}
	return updated, nil
}

func dateOnly(value time.Time, loc *time.Location) time.Time {
	local := value.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
