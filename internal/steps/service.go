package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

const maxHistoryDays = 366

var ErrInvalidRange = errors.New("invalid date range")

type historyReader interface {
	ListRange(ctx context.Context, userID int64, from, to time.Time) ([]models.StepRecord, error)
}

type syncer interface {
	Arm(userID int64)
	Disarm(userID int64)
	SyncNow(ctx context.Context, userID int64) (int, error)
}

// Service is the user-facing surface of the pipeline: start/stop the counter,
// ingest readings and query totals.
type Service struct {
	store    Store
	listener *Listener
	worker   syncer
	history  historyReader
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewService(
	store Store,
	listener *Listener,
	worker syncer,
	history historyReader,
	notifier Notifier,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		listener: listener,
		worker:   worker,
		history:  history,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context, userID int64) (*models.StepsToday, error) {
	if err := s.store.SetActive(ctx, userID, true); err != nil {
		return nil, fmt.Errorf("mark counter active: %w", err)
	}
	s.worker.Arm(userID)
	return s.Today(ctx, userID)
}

// Stop flushes the buffer once before disarming. A failed flush is logged and
// the buffer is kept for the next start.
func (s *Service) Stop(ctx context.Context, userID int64) (*models.StepsToday, error) {
	if _, err := s.worker.SyncNow(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("steps: final sync on stop failed")
	}
	if err := s.store.SetActive(ctx, userID, false); err != nil {
		return nil, fmt.Errorf("mark counter inactive: %w", err)
	}
	s.worker.Disarm(userID)

	today, err := s.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifySteps(Update{
			UserID: userID,
			Day:    today.Day,
			Steps:  today.Steps,
			Reason: UpdateReasonStopped,
		})
	}
	return today, nil
}

func (s *Service) Ingest(ctx context.Context, userID int64, readings []Reading) (*models.StepsToday, error) {
	active, err := s.store.IsActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check counter state: %w", err)
	}
	if !active {
		return nil, ErrCounterInactive
	}

	if _, err := s.listener.HandleBatch(ctx, userID, readings); err != nil {
		return nil, err
	}
	return s.Today(ctx, userID)
}

func (s *Service) SyncNow(ctx context.Context, userID int64) (int, error) {
	return s.worker.SyncNow(ctx, userID)
}

// Today reports the buffered count in the device's timezone; a state left
// over from an earlier day counts as zero.
func (s *Service) Today(ctx context.Context, userID int64) (*models.StepsToday, error) {
	state, err := s.store.LoadState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load step state: %w", err)
	}
	active, err := s.store.IsActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check counter state: %w", err)
	}

	loc, err := resolveLocation(state.Timezone, s.loc)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("steps: stored timezone is invalid, using default")
		loc = s.loc
	}
	today := DayOf(s.now(), loc)
	steps := 0
	if state.Day == today {
		steps = state.StepsToday
	}
	return &models.StepsToday{
		UserID:        userID,
		Day:           today,
		Steps:         steps,
		CounterActive: active,
	}, nil
}

func (s *Service) History(ctx context.Context, userID int64, from, to time.Time) ([]models.StepRecord, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if to.Sub(from) > maxHistoryDays*24*time.Hour {
		return nil, ErrInvalidRange
	}
	return s.history.ListRange(ctx, userID, from, to)
}
