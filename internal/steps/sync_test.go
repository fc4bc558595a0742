package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
)

func newTestWorker(store Store, writer StepWriter, ready ReadinessCheck, m *metrics.Manager) *SyncWorker {
	worker := NewSyncWorker(store, writer, ready, SyncConfig{Interval: time.Hour, Location: time.UTC}, m)
	worker.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return worker
}

func seedUser(t *testing.T, store *RedisStore, userID int64, state CounterState, days map[string]int) {
	t.Helper()
	require.NoError(t, store.SaveReading(context.Background(), userID, state, days))
}

func TestSyncAllFlushesClosedDaysAndKeepsToday(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	m := metrics.NewTestManager()
	worker := newTestWorker(store, writer, nil, m)
	ctx := context.Background()

	seedUser(t, store, 1, CounterState{Day: "2024-03-02", StepsToday: 40, Initialized: true}, map[string]int{
		"2024-03-01": 6100,
		"2024-03-02": 40,
	})
	worker.Arm(1)

	report, err := worker.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Synced: 1, Days: 2}, report)

	steps, ok := writer.last(1, "2024-03-01")
	require.True(t, ok)
	assert.Equal(t, 6100, steps)
	steps, ok = writer.last(1, "2024-03-02")
	require.True(t, ok)
	assert.Equal(t, 40, steps)

	buffered, err := store.Buffered(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-02": 40}, buffered)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterDaysFlushed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterSyncRuns.WithLabelValues("ok")))
}

func TestSyncAllIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	worker := newTestWorker(store, writer, nil, nil)
	ctx := context.Background()

	seedUser(t, store, 1, CounterState{Day: "2024-03-02", StepsToday: 40, Initialized: true}, map[string]int{
		"2024-03-02": 40,
	})
	worker.Arm(1)

	_, err := worker.SyncAll(ctx)
	require.NoError(t, err)
	_, err = worker.SyncAll(ctx)
	require.NoError(t, err)

	require.Len(t, writer.calls, 2)
	assert.Equal(t, writer.calls[0], writer.calls[1])
}

func TestSyncAllDefersLowBatteryUsers(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	m := metrics.NewTestManager()
	worker := newTestWorker(store, writer, nil, m)

	seedUser(t, store, 2, CounterState{Day: "2024-03-02", StepsToday: 70, BatteryLow: true, Initialized: true},
		map[string]int{"2024-03-02": 70})
	worker.Arm(2)

	report, err := worker.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deferred)
	assert.Empty(t, writer.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterSyncDeferred))

	days, err := worker.SyncNow(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestSyncAllSkipsWhenStoreUnreachable(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	m := metrics.NewTestManager()
	worker := newTestWorker(store, writer, func(context.Context) error {
		return errors.New("connection refused")
	}, m)
	worker.Arm(1)

	_, err := worker.SyncAll(context.Background())
	require.ErrorIs(t, err, ErrConstraintsNotMet)
	assert.Empty(t, writer.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterSyncRuns.WithLabelValues("skipped")))
}

func TestSyncRetriesWithBackoff(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{failures: 2, err: errors.New("timeout")}
	m := metrics.NewTestManager()
	worker := newTestWorker(store, writer, nil, m)

	seedUser(t, store, 3, CounterState{Day: "2024-03-02", StepsToday: 15, Initialized: true},
		map[string]int{"2024-03-02": 15})

	days, err := worker.SyncNow(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, days)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterSyncRetries))
}

func TestSyncGivesUpAfterRetries(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{failures: 10, err: errors.New("timeout")}
	m := metrics.NewTestManager()
	worker := newTestWorker(store, writer, nil, m)

	seedUser(t, store, 3, CounterState{Day: "2024-03-02", StepsToday: 15, Initialized: true},
		map[string]int{"2024-03-01": 900, "2024-03-02": 15})
	worker.Arm(3)

	report, err := worker.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	buffered, err := store.Buffered(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, buffered, 2)
}

func TestArmDisarmTracksGauge(t *testing.T) {
	m := metrics.NewTestManager()
	worker := newTestWorker(nil, nil, nil, m)

	worker.Arm(4)
	worker.Arm(4)
	worker.Arm(2)
	assert.Equal(t, []int64{2, 4}, worker.Armed())
	assert.Equal(t, float64(2), testutil.ToFloat64(m.GaugeArmedCounters))

	worker.Disarm(4)
	worker.Disarm(4)
	assert.False(t, worker.IsArmed(4))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GaugeArmedCounters))
}

func TestRunStopsOnCancel(t *testing.T) {
	worker := NewSyncWorker(nil, nil, nil, SyncConfig{Interval: 5 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sync worker did not stop")
	}
}

type failingRemoveStore struct {
	*RedisStore
}

func (s failingRemoveStore) RemoveDays(context.Context, int64, ...string) error {
	return errors.New("redis unavailable")
}

func TestSyncDropsMalformedBufferEntries(t *testing.T) {
	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	worker := newTestWorker(store, writer, nil, nil)
	ctx := context.Background()

	seedUser(t, store, 3, CounterState{Day: "2024-03-02", StepsToday: 12, Initialized: true}, map[string]int{
		"yesterday":  500,
		"2024-03-02": 12,
	})

	days, err := worker.SyncNow(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	buffered, err := store.Buffered(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-02": 12}, buffered)
}

func TestSyncLogsFailedMalformedEntryRemoval(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	store, _ := newTestStore(t)
	writer := &fakeWriter{}
	worker := newTestWorker(failingRemoveStore{store}, writer, nil, nil)

	seedUser(t, store, 4, CounterState{Day: "2024-03-02", StepsToday: 3, Initialized: true}, map[string]int{
		"garbage":    1,
		"2024-03-02": 3,
	})

	days, err := worker.SyncNow(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "steps: remove malformed buffer entry" {
			found = true
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, "garbage", entry.Data["day"])
		}
	}
	assert.True(t, found, "removal failure was not logged")
}
