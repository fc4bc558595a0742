package services

import (
	"context"
	"strings"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/pkg/fitness"
)

var mealTypes = map[string]struct{}{
	"breakfast": {},
	"lunch":     {},
	"dinner":    {},
	"snack":     {},
}

type mealStore interface {
	Create(ctx context.Context, input repository.CreateMealInput) (*models.Meal, error)
	ListRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Meal, error)
	Delete(ctx context.Context, userID, mealID int64) (bool, error)
	SumCalories(ctx context.Context, userID int64, from, to time.Time) (float64, error)
}

type activityStore interface {
	Create(ctx context.Context, input repository.CreateActivityInput) (*models.PhysicalActivity, error)
	ListRange(ctx context.Context, userID int64, from, to time.Time) ([]models.PhysicalActivity, error)
	Delete(ctx context.Context, userID, activityID int64) (bool, error)
	SumCaloriesBurned(ctx context.Context, userID int64, from, to time.Time) (float64, error)
}

// JournalService covers meals and physical activities, both listed per
// calendar day in the configured timezone.
type JournalService struct {
	mealRepo     mealStore
	activityRepo activityStore
	loc          *time.Location
	now          func() time.Time
}

type AddMealInput struct {
	Name     string
	MealType string
	Calories float64
	EatenAt  *time.Time
}

type AddActivityInput struct {
	ActivityType    string
	DurationMinutes int
	CaloriesBurned  float64
	PerformedAt     *time.Time
}

func NewJournalService(mealRepo mealStore, activityRepo activityStore, loc *time.Location) *JournalService {
	if loc == nil {
		loc = time.UTC
	}
	return &JournalService{
		mealRepo:     mealRepo,
		activityRepo: activityRepo,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *JournalService) AddMeal(ctx context.Context, userID int64, input AddMealInput) (*models.Meal, error) {
	name := strings.TrimSpace(input.Name)
	mealType := strings.ToLower(strings.TrimSpace(input.MealType))
	if name == "" || input.Calories < 0 {
		return nil, ErrInvalidInput
	}
	if _, ok := mealTypes[mealType]; !ok {
		return nil, ErrInvalidInput
	}

	return s.mealRepo.Create(ctx, repository.CreateMealInput{
		UserID:   userID,
		Name:     name,
		MealType: mealType,
		Calories: input.Calories,
		EatenAt:  s.timestamp(input.EatenAt),
	})
}

func (s *JournalService) ListMeals(ctx context.Context, userID int64, day time.Time) ([]models.Meal, error) {
	from, to := s.dayBounds(day)
	return s.mealRepo.ListRange(ctx, userID, from, to)
}

func (s *JournalService) DeleteMeal(ctx context.Context, userID, mealID int64) error {
	deleted, err := s.mealRepo.Delete(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *JournalService) AddActivity(
	ctx context.Context,
	userID int64,
	input AddActivityInput,
) (*models.PhysicalActivity, error) {
	activityType := strings.TrimSpace(input.ActivityType)
	if activityType == "" || input.DurationMinutes <= 0 || input.CaloriesBurned < 0 {
		return nil, ErrInvalidInput
	}

	return s.activityRepo.Create(ctx, repository.CreateActivityInput{
		UserID:          userID,
		ActivityType:    activityType,
		DurationMinutes: input.DurationMinutes,
		CaloriesBurned:  input.CaloriesBurned,
		PerformedAt:     s.timestamp(input.PerformedAt),
	})
}

func (s *JournalService) ListActivities(
	ctx context.Context,
	userID int64,
	day time.Time,
) ([]models.PhysicalActivity, error) {
	from, to := s.dayBounds(day)
	return s.activityRepo.ListRange(ctx, userID, from, to)
}

func (s *JournalService) DeleteActivity(ctx context.Context, userID, activityID int64) error {
	deleted, err := s.activityRepo.Delete(ctx, userID, activityID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *JournalService) DailyCalories(ctx context.Context, userID int64, day time.Time) (*models.DailyCalories, error) {
	from, to := s.dayBounds(day)

	consumed, err := s.mealRepo.SumCalories(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	burned, err := s.activityRepo.SumCaloriesBurned(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	return &models.DailyCalories{
		Day:      from.Format("2006-01-02"),
		Consumed: fitness.Round(consumed, 1),
		Burned:   fitness.Round(burned, 1),
		Net:      fitness.Round(consumed-burned, 1),
	}, nil
}

func (s *JournalService) timestamp(value *time.Time) time.Time {
	if value == nil {
		return s.now().UTC()
	}
	return value.UTC()
}

// dayBounds returns [start, end) of the calendar day containing value.
func (s *JournalService) dayBounds(value time.Time) (time.Time, time.Time) {
	local := value.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}
