package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type stubJournalService struct {
	lastDay     time.Time
	lastMeal    services.AddMealInput
	deleteErr   error
	lastDeleted int64
}

func (s *stubJournalService) AddMeal(_ context.Context, userID int64, input services.AddMealInput) (*models.Meal, error) {
	s.lastMeal = input
	return &models.Meal{ID: 1, UserID: userID, Name: input.Name}, nil
}

func (s *stubJournalService) ListMeals(_ context.Context, _ int64, day time.Time) ([]models.Meal, error) {
	s.lastDay = day
	return []models.Meal{}, nil
}

func (s *stubJournalService) DeleteMeal(_ context.Context, _ int64, mealID int64) error {
	s.lastDeleted = mealID
	return s.deleteErr
}

func (s *stubJournalService) AddActivity(
	_ context.Context,
	userID int64,
	input services.AddActivityInput,
) (*models.PhysicalActivity, error) {
	return &models.PhysicalActivity{ID: 1, UserID: userID, ActivityType: input.ActivityType}, nil
}

func (s *stubJournalService) ListActivities(_ context.Context, _ int64, day time.Time) ([]models.PhysicalActivity, error) {
	s.lastDay = day
	return []models.PhysicalActivity{}, nil
}

func (s *stubJournalService) DeleteActivity(_ context.Context, _ int64, activityID int64) error {
	s.lastDeleted = activityID
	return s.deleteErr
}

func (s *stubJournalService) DailyCalories(_ context.Context, _ int64, day time.Time) (*models.DailyCalories, error) {
	s.lastDay = day
	return &models.DailyCalories{Day: day.Format(dateLayout)}, nil
}

func TestListMealsUsesFechaQuery(t *testing.T) {
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	service := &stubJournalService{}
	handler := NewJournalHandler(service, loc)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/meals", handler.ListMeals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/meals?fecha=2024-03-09", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), service.lastDay)
}

func TestListActivitiesDefaultsToToday(t *testing.T) {
	service := &stubJournalService{}
	handler := NewJournalHandler(service, time.UTC)
	handler.now = func() time.Time { return time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC) }

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/activities", handler.ListActivities)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2024-06-01", service.lastDay.Format(dateLayout))
}

func TestListMealsRejectsBadFecha(t *testing.T) {
	handler := NewJournalHandler(&stubJournalService{}, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/meals", handler.ListMeals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/meals?fecha=09/03/2024", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteMealReturnsNotFound(t *testing.T) {
	service := &stubJournalService{deleteErr: services.ErrNotFound}
	handler := NewJournalHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Delete("/api/v1/meals/:id", handler.DeleteMeal)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/meals/31", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.EqualValues(t, 31, service.lastDeleted)
}

type stubGoalService struct {
	lastInput     services.CreateGoalInput
	lastActive    *bool
	lastFulfilled *bool
	err           error
}

func (s *stubGoalService) CreateGoal(_ context.Context, userID int64, input services.CreateGoalInput) (*models.Goal, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Goal{ID: 1, UserID: userID, TargetWeightKG: input.TargetWeightKG, Active: true}, nil
}

func (s *stubGoalService) ListGoals(_ context.Context, _ int64, active, fulfilled *bool) ([]models.Goal, error) {
	s.lastActive = active
	s.lastFulfilled = fulfilled
	return []models.Goal{}, s.err
}

func (s *stubGoalService) ActiveProgress(_ context.Context, _ int64) (*models.GoalProgress, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.GoalProgress{ProgressPct: 50}, nil
}

func (s *stubGoalService) CancelGoal(_ context.Context, _ int64, goalID int64) (*models.Goal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Goal{ID: goalID}, nil
}

func TestListGoalsParsesActivaAndCumplida(t *testing.T) {
	service := &stubGoalService{}
	handler := NewGoalHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/goals", handler.ListGoals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/goals?activa=true&cumplida=false", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, service.lastActive)
	require.True(t, *service.lastActive)
	require.NotNil(t, service.lastFulfilled)
	require.False(t, *service.lastFulfilled)
}

func TestListGoalsWithoutFiltersPassesNil(t *testing.T) {
	service := &stubGoalService{}
	handler := NewGoalHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/goals", handler.ListGoals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/goals", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, service.lastActive)
	require.Nil(t, service.lastFulfilled)
}

func TestCreateGoalParsesDeadline(t *testing.T) {
	service := &stubGoalService{}
	handler := NewGoalHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/goals", handler.CreateGoal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals",
		strings.NewReader(`{"target_weight_kg":70,"deadline":"2031-01-31"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, time.Date(2031, 1, 31, 0, 0, 0, 0, time.UTC), service.lastInput.Deadline)
	require.Empty(t, service.lastInput.Direction)
	require.Nil(t, service.lastInput.StartWeightKG)
}

func TestCreateGoalRejectsUnknownDirection(t *testing.T) {
	handler := NewGoalHandler(&stubGoalService{}, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/goals", handler.CreateGoal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals",
		strings.NewReader(`{"target_weight_kg":70,"deadline":"2031-01-31","direction":"keep"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancelGoalReturnsConflictWhenInactive(t *testing.T) {
	handler := NewGoalHandler(&stubGoalService{err: services.ErrInvalidStateTransition}, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/goals/:id/cancel", handler.CancelGoal)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/goals/3/cancel", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestActiveProgressReturnsNotFoundWithoutGoal(t *testing.T) {
	handler := NewGoalHandler(&stubGoalService{err: services.ErrNotFound}, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/goals/active/progress", handler.ActiveProgress)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/goals/active/progress", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type stubMeasurementService struct {
	lastFilter repository.AnthropometryListFilter
	lastInput  services.RecordMeasurementInput
	err        error
}

func (s *stubMeasurementService) RecordMeasurement(
	_ context.Context,
	userID int64,
	input services.RecordMeasurementInput,
) (*services.MeasurementResult, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &services.MeasurementResult{Measurement: &models.Anthropometry{UserID: userID, WeightKG: input.WeightKG}}, nil
}

func (s *stubMeasurementService) ListMeasurements(
	_ context.Context,
	filter repository.AnthropometryListFilter,
) ([]models.Anthropometry, int, error) {
	s.lastFilter = filter
	return []models.Anthropometry{}, 0, s.err
}

func (s *stubMeasurementService) LatestMeasurement(_ context.Context, _ int64) (*models.Anthropometry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Anthropometry{WeightKG: 80}, nil
}

func TestListMeasurementsMakesToInclusive(t *testing.T) {
	service := &stubMeasurementService{}
	handler := NewMeasurementHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/measurements", handler.ListMeasurements)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/measurements?from=2024-01-01&to=2024-01-31&page=2&limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, service.lastFilter.From)
	require.NotNil(t, service.lastFilter.To)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *service.lastFilter.To)
	require.Equal(t, 5, service.lastFilter.Offset)
	require.Equal(t, 5, service.lastFilter.Limit)
}

func TestRecordMeasurementRejectsMissingWeight(t *testing.T) {
	service := &stubMeasurementService{}
	handler := NewMeasurementHandler(service, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/measurements", handler.RecordMeasurement)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/measurements", strings.NewReader(`{"waist_cm":85}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLatestMeasurementReturnsNotFound(t *testing.T) {
	handler := NewMeasurementHandler(&stubMeasurementService{err: services.ErrNotFound}, time.UTC)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/measurements/latest", handler.LatestMeasurement)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/measurements/latest", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
