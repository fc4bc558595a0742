package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
)

type stubGoalRepo struct {
	active       *models.Goal
	byID         map[int64]*models.Goal
	fulfilledAt  *time.Time
	deactivated  []int64
	lastFilter   repository.GoalListFilter
	getActiveErr error
}

func (r *stubGoalRepo) GetActive(_ context.Context, _ int64) (*models.Goal, error) {
	if r.getActiveErr != nil {
		return nil, r.getActiveErr
	}
	if r.active == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *r.active
	return &copied, nil
}

func (r *stubGoalRepo) GetByID(_ context.Context, goalID int64) (*models.Goal, error) {
	goal, ok := r.byID[goalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return goal, nil
}

func (r *stubGoalRepo) List(_ context.Context, filter repository.GoalListFilter) ([]models.Goal, error) {
	r.lastFilter = filter
	return []models.Goal{}, nil
}

func (r *stubGoalRepo) MarkFulfilled(_ context.Context, goalID int64, at time.Time) (*models.Goal, error) {
	if r.active == nil || r.active.ID != goalID {
		return nil, pgx.ErrNoRows
	}
	r.fulfilledAt = &at
	goal := *r.active
	goal.Fulfilled = true
	goal.Active = false
	goal.FulfilledAt = &at
	r.active = nil
	return &goal, nil
}

func (r *stubGoalRepo) Deactivate(_ context.Context, goalID int64) (*models.Goal, error) {
	r.deactivated = append(r.deactivated, goalID)
	goal := models.Goal{ID: goalID, Active: false}
	if r.active != nil && r.active.ID == goalID {
		goal = *r.active
		goal.Active = false
		r.active = nil
	}
	return &goal, nil
}

type stubLatestMeasurement struct {
	latest *models.Anthropometry
}

func (s *stubLatestMeasurement) Latest(_ context.Context, _ int64) (*models.Anthropometry, error) {
	if s.latest == nil {
		return nil, pgx.ErrNoRows
	}
	return s.latest, nil
}

func newTestGoalService(goals *stubGoalRepo, latest *models.Anthropometry) *GoalService {
	service := NewGoalService(nil, goals, &stubLatestMeasurement{latest: latest}, time.UTC)
	service.now = func() time.Time { return testTime }
	return service
}

func activeLoseGoal() *models.Goal {
	return &models.Goal{
		ID:             11,
		UserID:         42,
		StartWeightKG:  90,
		TargetWeightKG: 80,
		Direction:      models.GoalDirectionLose,
		Deadline:       time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		Active:         true,
	}
}

func TestGoalServiceEvaluateMarksFulfilledWithinTolerance(t *testing.T) {
	goals := &stubGoalRepo{active: activeLoseGoal()}
	service := newTestGoalService(goals, nil)

	goal, err := service.Evaluate(context.Background(), 42, 80.4, testTime)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !goal.Fulfilled || goal.Active {
		t.Fatalf("expected fulfilled inactive goal, got %+v", goal)
	}
	if goals.fulfilledAt == nil || !goals.fulfilledAt.Equal(testTime) {
		t.Fatalf("expected fulfilled at %v, got %v", testTime, goals.fulfilledAt)
	}
}

func TestGoalServiceEvaluateKeepsGoalOutsideTolerance(t *testing.T) {
	goals := &stubGoalRepo{active: activeLoseGoal()}
	service := newTestGoalService(goals, nil)

	goal, err := service.Evaluate(context.Background(), 42, 80.6, testTime)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if goal.Fulfilled || !goal.Active {
		t.Fatalf("expected goal to stay active, got %+v", goal)
	}
	if len(goals.deactivated) != 0 {
		t.Fatalf("unexpected deactivation %v", goals.deactivated)
	}
}

func TestGoalServiceEvaluateGainGoal(t *testing.T) {
	active := activeLoseGoal()
	active.StartWeightKG = 60
	active.TargetWeightKG = 65
	active.Direction = models.GoalDirectionGain
	goals := &stubGoalRepo{active: active}
	service := newTestGoalService(goals, nil)

	goal, err := service.Evaluate(context.Background(), 42, 64.5, testTime)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !goal.Fulfilled {
		t.Fatalf("expected gain goal fulfilled at 64.5, got %+v", goal)
	}
}

func TestGoalServiceEvaluateExpiresPastDeadline(t *testing.T) {
	active := activeLoseGoal()
	active.Deadline = time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)
	goals := &stubGoalRepo{active: active}
	service := newTestGoalService(goals, nil)

	goal, err := service.Evaluate(context.Background(), 42, 80, testTime)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if goal.Fulfilled || goal.Active {
		t.Fatalf("expected expired inactive goal, got %+v", goal)
	}
	if len(goals.deactivated) != 1 || goals.deactivated[0] != 11 {
		t.Fatalf("expected goal 11 deactivated, got %v", goals.deactivated)
	}
}

func TestGoalServiceEvaluateWithoutActiveGoal(t *testing.T) {
	service := newTestGoalService(&stubGoalRepo{}, nil)

	goal, err := service.Evaluate(context.Background(), 42, 80, testTime)
	if err != nil || goal != nil {
		t.Fatalf("expected nil goal and error, got %+v / %v", goal, err)
	}
}

func TestGoalServiceActiveProgress(t *testing.T) {
	goals := &stubGoalRepo{active: activeLoseGoal()}
	service := newTestGoalService(goals, &models.Anthropometry{WeightKG: 85})

	progress, err := service.ActiveProgress(context.Background(), 42)
	if err != nil {
		t.Fatalf("ActiveProgress: %v", err)
	}
	if progress.ProgressPct != 50 {
		t.Fatalf("expected 50%% progress, got %.2f", progress.ProgressPct)
	}
	if progress.CurrentWeightKG == nil || *progress.CurrentWeightKG != 85 {
		t.Fatalf("unexpected current weight %v", progress.CurrentWeightKG)
	}

	_, err = newTestGoalService(&stubGoalRepo{}, nil).ActiveProgress(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalServiceListGoalsExpiresFirst(t *testing.T) {
	active := activeLoseGoal()
	active.Deadline = time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)
	goals := &stubGoalRepo{active: active}
	service := newTestGoalService(goals, nil)

	activeOnly := true
	if _, err := service.ListGoals(context.Background(), 42, &activeOnly, nil); err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals.deactivated) != 1 {
		t.Fatalf("expected expired goal deactivated before listing")
	}
	if goals.lastFilter.Active == nil || !*goals.lastFilter.Active || goals.lastFilter.Fulfilled != nil {
		t.Fatalf("unexpected filter %+v", goals.lastFilter)
	}
}

func TestGoalServiceCreateGoalValidation(t *testing.T) {
	service := newTestGoalService(&stubGoalRepo{}, nil)
	deadline := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	start := 80.0

	cases := []struct {
		name  string
		input CreateGoalInput
	}{
		{name: "missing target", input: CreateGoalInput{StartWeightKG: &start, Deadline: deadline}},
		{name: "missing deadline", input: CreateGoalInput{StartWeightKG: &start, TargetWeightKG: 70}},
		{name: "past deadline", input: CreateGoalInput{StartWeightKG: &start, TargetWeightKG: 70, Deadline: time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{name: "gain below start", input: CreateGoalInput{StartWeightKG: &start, TargetWeightKG: 70, Direction: models.GoalDirectionGain, Deadline: deadline}},
		{name: "lose above start", input: CreateGoalInput{StartWeightKG: &start, TargetWeightKG: 90, Direction: models.GoalDirectionLose, Deadline: deadline}},
		{name: "unknown direction", input: CreateGoalInput{StartWeightKG: &start, TargetWeightKG: 70, Direction: "sideways", Deadline: deadline}},
		{name: "no start and no measurement", input: CreateGoalInput{TargetWeightKG: 70, Deadline: deadline}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateGoal(context.Background(), 42, tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGoalServiceCancelGoal(t *testing.T) {
	goals := &stubGoalRepo{
		active: activeLoseGoal(),
		byID: map[int64]*models.Goal{
			11: activeLoseGoal(),
			12: {ID: 12, UserID: 42, Active: false},
		},
	}
	service := newTestGoalService(goals, nil)

	if _, err := service.CancelGoal(context.Background(), 43, 11); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.CancelGoal(context.Background(), 42, 12); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if _, err := service.CancelGoal(context.Background(), 42, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	goal, err := service.CancelGoal(context.Background(), 42, 11)
	if err != nil {
		t.Fatalf("CancelGoal: %v", err)
	}
	if goal.Active {
		t.Fatalf("expected inactive goal after cancel")
	}
}
