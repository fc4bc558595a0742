package steps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
)

const (
	DefaultSyncInterval   = 2 * time.Hour
	DefaultSyncMaxElapsed = 10 * time.Minute
)

var (
	ErrConstraintsNotMet = errors.New("sync constraints not met")
	ErrDeferred          = errors.New("sync deferred: device battery low")
)

// StepWriter persists one day's total. Writes must overwrite.
type StepWriter interface {
	Upsert(ctx context.Context, userID int64, day time.Time, steps int) error
}

// ReadinessCheck reports whether the remote store can take writes right now.
type ReadinessCheck func(ctx context.Context) error

type SyncConfig struct {
	Interval   time.Duration
	MaxElapsed time.Duration
	Location   *time.Location
}

type SyncReport struct {
	Synced   int
	Deferred int
	Failed   int
	Days     int
}

// SyncWorker periodically flushes buffered per-day counts of armed users.
type SyncWorker struct {
	store      Store
	writer     StepWriter
	ready      ReadinessCheck
	metrics    *metrics.Manager
	interval   time.Duration
	maxElapsed time.Duration
	loc        *time.Location

	armed      sync.Map
	newBackOff func() backoff.BackOff
}

func NewSyncWorker(
	store Store,
	writer StepWriter,
	ready ReadinessCheck,
	cfg SyncConfig,
	m *metrics.Manager,
) *SyncWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = DefaultSyncMaxElapsed
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	w := &SyncWorker{
		store:      store,
		writer:     writer,
		ready:      ready,
		metrics:    m,
		interval:   cfg.Interval,
		maxElapsed: cfg.MaxElapsed,
		loc:        cfg.Location,
	}
	w.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = w.maxElapsed
		return b
	}
	return w
}

func (w *SyncWorker) Arm(userID int64) {
	if _, loaded := w.armed.LoadOrStore(userID, struct{}{}); !loaded && w.metrics != nil {
		w.metrics.GaugeArmedCounters.Inc()
	}
}

func (w *SyncWorker) Disarm(userID int64) {
	if _, loaded := w.armed.LoadAndDelete(userID); loaded && w.metrics != nil {
		w.metrics.GaugeArmedCounters.Dec()
	}
}

func (w *SyncWorker) IsArmed(userID int64) bool {
	_, ok := w.armed.Load(userID)
	return ok
}

func (w *SyncWorker) Armed() []int64 {
	userIDs := make([]int64, 0)
	w.armed.Range(func(key, _ any) bool {
		userIDs = append(userIDs, key.(int64))
		return true
	})
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	return userIDs
}

// Run ticks until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("steps: sync worker started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("steps: sync worker stopped")
			return
		case <-ticker.C:
			report, err := w.SyncAll(ctx)
			if err != nil {
				logrus.WithError(err).Warn("steps: sync run skipped")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"synced":   report.Synced,
				"deferred": report.Deferred,
				"failed":   report.Failed,
				"days":     report.Days,
			}).Info("steps: sync run finished")
		}
	}
}

// SyncAll runs one period for every armed user. Users whose device reported
// low battery are deferred to the next period.
func (w *SyncWorker) SyncAll(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	started := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.HistSyncDuration.Observe(time.Since(started).Seconds())
		}
	}()

	if err := w.checkReady(ctx); err != nil {
		w.countRun("skipped")
		return report, err
	}

	for _, userID := range w.Armed() {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		days, err := w.syncUser(ctx, userID, true)
		switch {
		case errors.Is(err, ErrDeferred):
			report.Deferred++
			if w.metrics != nil {
				w.metrics.CounterSyncDeferred.Inc()
			}
			w.countRun("deferred")
		case err != nil:
			report.Failed++
			w.countRun("failed")
			logrus.WithError(err).WithField("user_id", userID).Error("steps: sync user failed")
		default:
			report.Synced++
			report.Days += days
			w.countRun("ok")
		}
	}
	return report, nil
}

// SyncNow flushes one user immediately, ignoring the battery constraint.
func (w *SyncWorker) SyncNow(ctx context.Context, userID int64) (int, error) {
	if err := w.checkReady(ctx); err != nil {
		w.countRun("skipped")
		return 0, err
	}

	days, err := w.syncUser(ctx, userID, false)
	if err != nil {
		w.countRun("failed")
		return 0, err
	}
	w.countRun("ok")
	return days, nil
}

func (w *SyncWorker) syncUser(ctx context.Context, userID int64, respectBattery bool) (int, error) {
	var days int
	operation := func() error {
		n, err := w.flushUser(ctx, userID, respectBattery)
		if errors.Is(err, ErrDeferred) {
			return backoff.Permanent(err)
		}
		days = n
		return err
	}
	notify := func(err error, wait time.Duration) {
		if w.metrics != nil {
			w.metrics.CounterSyncRetries.Inc()
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"wait":    wait.String(),
		}).Warn("steps: sync attempt failed, retrying")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(w.newBackOff(), ctx), notify)
	return days, err
}

func (w *SyncWorker) flushUser(ctx context.Context, userID int64, respectBattery bool) (int, error) {
	state, err := w.store.LoadState(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load step state: %w", err)
	}
	if respectBattery && state.BatteryLow {
		return 0, ErrDeferred
	}

	buffered, err := w.store.Buffered(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read step buffer: %w", err)
	}

	dayKeys := make([]string, 0, len(buffered))
	for day := range buffered {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)

	written := 0
	for _, dayKey := range dayKeys {
		day, err := ParseDay(dayKey, w.loc)
		if err != nil {
			logrus.WithError(err).WithField("day", dayKey).Warn("steps: dropping malformed buffer entry")
			if err := w.store.RemoveDays(ctx, userID, dayKey); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"day":     dayKey,
				}).Warn("steps: remove malformed buffer entry")
			}
			continue
		}
		if err := w.writer.Upsert(ctx, userID, day, buffered[dayKey]); err != nil {
			return written, fmt.Errorf("write steps for %s: %w", dayKey, err)
		}
		written++
		if w.metrics != nil {
			w.metrics.CounterDaysFlushed.Inc()
		}

		// today keeps accumulating, closed days are done
		if dayKey != state.Day {
			if err := w.store.RemoveDays(ctx, userID, dayKey); err != nil {
				return written, fmt.Errorf("clear step buffer for %s: %w", dayKey, err)
			}
		}
	}
	return written, nil
}

func (w *SyncWorker) checkReady(ctx context.Context) error {
	if w.ready == nil {
		return nil
	}
	if err := w.ready(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintsNotMet, err)
	}
	return nil
}

func (w *SyncWorker) countRun(result string) {
	if w.metrics != nil {
		w.metrics.CounterSyncRuns.WithLabelValues(result).Inc()
	}
}
