package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/pkg/fitness"
)

const maxReportDays = 366

type reportStore interface {
	Create(ctx context.Context, report *models.ProgressReport) (*models.ProgressReport, error)
	GetByID(ctx context.Context, reportID int64) (*models.ProgressReport, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ProgressReport, error)
	CreateFeedback(ctx context.Context, input repository.CreateFeedbackInput) (*models.Feedback, error)
	ListFeedbackByReportIDs(ctx context.Context, reportIDs []int64) (map[int64][]models.Feedback, error)
}

type measurementBounds interface {
	Bounds(ctx context.Context, userID int64, from, to time.Time) (*models.Anthropometry, *models.Anthropometry, error)
}

type calorieSummer interface {
	SumCalories(ctx context.Context, userID int64, from, to time.Time) (float64, error)
}

type burnedCalorieSummer interface {
	SumCaloriesBurned(ctx context.Context, userID int64, from, to time.Time) (float64, error)
}

type stepTotals interface {
	Totals(ctx context.Context, userID int64, from, to time.Time) (int64, int, error)
}

type goalProgressReader interface {
	ActiveProgress(ctx context.Context, userID int64) (*models.GoalProgress, error)
}

type ReportService struct {
	reportRepo      reportStore
	measurementRepo measurementBounds
	mealRepo        calorieSummer
	activityRepo    burnedCalorieSummer
	stepRepo        stepTotals
	goals           goalProgressReader
	links           linkChecker
	loc             *time.Location
}

type ReportSources struct {
	Measurements measurementBounds
	Meals        calorieSummer
	Activities   burnedCalorieSummer
	Steps        stepTotals
	Goals        goalProgressReader
}

type AddFeedbackInput struct {
	Comment string
	Rating  *int
}

func NewReportService(
	reportRepo reportStore,
	sources ReportSources,
	links linkChecker,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reportRepo:      reportRepo,
		measurementRepo: sources.Measurements,
		mealRepo:        sources.Meals,
		activityRepo:    sources.Activities,
		stepRepo:        sources.Steps,
		goals:           sources.Goals,
		links:           links,
		loc:             loc,
	}
}

// Generate builds and stores a progress snapshot for the calendar days
// from..to inclusive.
func (s *ReportService) Generate(ctx context.Context, userID int64, from, to time.Time) (*models.ProgressReport, error) {
	from = dateOnly(from, s.loc)
	to = dateOnly(to, s.loc)
	if to.Before(from) || to.Sub(from) > maxReportDays*24*time.Hour {
		return nil, ErrInvalidInput
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)

	report := &models.ProgressReport{
		UserID:      userID,
		PeriodStart: from,
		PeriodEnd:   to,
	}

	first, last, err := s.measurementRepo.Bounds(ctx, userID, start, end)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("load measurements: %w", err)
	default:
		report.StartWeightKG = &first.WeightKG
		report.EndWeightKG = &last.WeightKG
		change := fitness.Round(last.WeightKG-first.WeightKG, 2)
		report.WeightChangeKG = &change
		report.StartBodyFatPct = first.BodyFatPct
		report.EndBodyFatPct = last.BodyFatPct
	}

	if report.CaloriesConsumed, err = s.mealRepo.SumCalories(ctx, userID, start, end); err != nil {
		return nil, fmt.Errorf("sum calories: %w", err)
	}
	if report.CaloriesBurned, err = s.activityRepo.SumCaloriesBurned(ctx, userID, start, end); err != nil {
		return nil, fmt.Errorf("sum calories burned: %w", err)
	}

	totalSteps, recordedDays, err := s.stepRepo.Totals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum steps: %w", err)
	}
	report.TotalSteps = totalSteps
	if recordedDays > 0 {
		report.AverageDailySteps = fitness.Round(float64(totalSteps)/float64(recordedDays), 1)
	}

	progress, err := s.goals.ActiveProgress(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		logrus.WithError(err).WithField("user_id", userID).Warn("report goal progress")
	default:
		goalID := progress.ID
		pct := fitness.Round(progress.ProgressPct, 1)
		report.GoalID = &goalID
		report.GoalProgressPct = &pct
	}

	return s.reportRepo.Create(ctx, report)
}

// ListReports returns the reports of ownerID. Professionals may read the
// reports of their associated clients.
func (s *ReportService) ListReports(
	ctx context.Context,
	actorID int64,
	role string,
	ownerID int64,
) ([]models.ProgressReport, error) {
	if err := s.authorizeRead(ctx, actorID, role, ownerID); err != nil {
		return nil, err
	}

	reports, err := s.reportRepo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return reports, nil
	}

	ids := make([]int64, 0, len(reports))
	for _, report := range reports {
		ids = append(ids, report.ID)
	}
	feedback, err := s.reportRepo.ListFeedbackByReportIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if items, ok := feedback[reports[i].ID]; ok {
			reports[i].Feedback = items
		}
	}
	return reports, nil
}

func (s *ReportService) GetReport(
	ctx context.Context,
	actorID int64,
	role string,
	reportID int64,
) (*models.ProgressReport, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.authorizeRead(ctx, actorID, role, report.UserID); err != nil {
		return nil, err
	}

	feedback, err := s.reportRepo.ListFeedbackByReportIDs(ctx, []int64{report.ID})
	if err != nil {
		return nil, err
	}
	if items, ok := feedback[report.ID]; ok {
		report.Feedback = items
	}
	return report, nil
}

func (s *ReportService) AddFeedback(
	ctx context.Context,
	professionalID int64,
	reportID int64,
	input AddFeedbackInput,
) (*models.Feedback, error) {
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, ErrInvalidInput
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, ErrInvalidInput
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.links.EnsureLinked(ctx, report.UserID, professionalID); err != nil {
		if errors.Is(err, ErrNotAssociated) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	return s.reportRepo.CreateFeedback(ctx, repository.CreateFeedbackInput{
		ReportID:       reportID,
		ProfessionalID: professionalID,
		Comment:        comment,
		Rating:         input.Rating,
	})
}

func (s *ReportService) authorizeRead(ctx context.Context, actorID int64, role string, ownerID int64) error {
	switch role {
	case models.RoleUser:
		if actorID != ownerID {
			return ErrForbidden
		}
		return nil
	case models.RoleProfessional:
		if err := s.links.EnsureLinked(ctx, ownerID, actorID); err != nil {
			if errors.Is(err, ErrNotAssociated) {
				return ErrForbidden
			}
			return err
		}
		return nil
	default:
		return ErrForbidden
	}
}
