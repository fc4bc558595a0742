package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
)

const DefaultForwardThreshold = 10

const (
	UpdateReasonReading  = "reading"
	UpdateReasonRestored = "restored"
	UpdateReasonStopped  = "stopped"
)

// Update is what listeners receive when steps today moved.
type Update struct {
	UserID int64  `json:"user_id"`
	Day    string `json:"day"`
	Steps  int    `json:"steps"`
	Reason string `json:"reason"`
}

type Notifier interface {
	NotifySteps(update Update)
}

// Listener applies sensor readings, persists steps today on every reading
// and forwards updates only past the threshold.
type Listener struct {
	store     Store
	notifier  Notifier
	metrics   *metrics.Manager
	threshold int
	loc       *time.Location
	now       func() time.Time
}

func NewListener(store Store, notifier Notifier, m *metrics.Manager, threshold int, loc *time.Location) *Listener {
	if threshold <= 0 {
		threshold = DefaultForwardThreshold
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Listener{
		store:     store,
		notifier:  notifier,
		metrics:   m,
		threshold: threshold,
		loc:       loc,
		now:       time.Now,
	}
}

// HandleReading applies one reading and returns the resulting state.
func (l *Listener) HandleReading(ctx context.Context, userID int64, reading Reading) (CounterState, error) {
	if userID <= 0 {
		return CounterState{}, ErrInvalidReading
	}

	state, err := l.store.LoadState(ctx, userID)
	if err != nil {
		return CounterState{}, fmt.Errorf("load step state: %w", err)
	}

	timezone := reading.Timezone
	if timezone == "" {
		timezone = state.Timezone
	}
	day, err := l.dayOf(reading, timezone)
	if err != nil {
		return CounterState{}, err
	}

	next, transition, err := Apply(state, reading.Sensor, reading.Value, day)
	if err != nil {
		return state, err
	}
	if transition.Stale {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"day":     day,
			"current": state.Day,
		}).Debug("steps: ignoring reading from a past day")
		return state, nil
	}
	next.BatteryLow = reading.BatteryLow
	next.Timezone = timezone

	days := map[string]int{next.Day: next.StepsToday}
	if transition.ClosedDay != "" {
		days[transition.ClosedDay] = transition.ClosedSteps
	}

	// a new day always reaches listeners so they drop yesterday's total
	forward := transition.Reset == ResetDay || ShouldForward(next, l.threshold)
	if forward {
		next.LastForwarded = next.StepsToday
	}

	if err := l.store.SaveReading(ctx, userID, next, days); err != nil {
		return state, fmt.Errorf("save step state: %w", err)
	}

	if l.metrics != nil {
		l.metrics.CounterStepReadings.WithLabelValues(reading.Sensor).Inc()
		if transition.Reset != "" {
			l.metrics.CounterBaselineResets.WithLabelValues(transition.Reset).Inc()
		}
	}

	if forward {
		if l.metrics != nil {
			l.metrics.CounterStepForwards.Inc()
		}
		if l.notifier != nil {
			l.notifier.NotifySteps(Update{
				UserID: userID,
				Day:    next.Day,
				Steps:  next.StepsToday,
				Reason: UpdateReasonReading,
			})
		}
	}

	return next, nil
}

// HandleBatch applies readings in order and stops at the first failure.
func (l *Listener) HandleBatch(ctx context.Context, userID int64, readings []Reading) (CounterState, error) {
	if len(readings) == 0 {
		return CounterState{}, ErrInvalidReading
	}

	var (
		state CounterState
		err   error
	)
	for i, reading := range readings {
		state, err = l.HandleReading(ctx, userID, reading)
		if err != nil {
			return state, fmt.Errorf("reading %d: %w", i, err)
		}
	}
	return state, nil
}

func (l *Listener) dayOf(reading Reading, timezone string) (string, error) {
	observedAt := reading.ObservedAt
	if observedAt.IsZero() {
		observedAt = l.now()
	}

	loc, err := resolveLocation(timezone, l.loc)
	if err != nil {
		return "", err
	}
	return DayOf(observedAt, loc), nil
}

// resolveLocation falls back to fallback for an empty zone name.
func resolveLocation(timezone string, fallback *time.Location) (*time.Location, error) {
	if timezone == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidReading, timezone)
	}
	return loc, nil
}
