package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArmer struct {
	armed []int64
}

func (a *fakeArmer) Arm(userID int64) {
	a.armed = append(a.armed, userID)
}

func TestRecoverRearmsActiveCounters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetActive(ctx, 10, true))
	require.NoError(t, store.SetActive(ctx, 11, true))
	seedUser(t, store, 10, CounterState{Day: "2024-03-02", StepsToday: 1234, Initialized: true}, nil)

	armer := &fakeArmer{}
	notifier := &recordingNotifier{}
	count, err := Recover(ctx, store, armer, notifier)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []int64{10, 11}, armer.armed)

	require.Len(t, notifier.updates, 2)
	for _, update := range notifier.updates {
		assert.Equal(t, UpdateReasonRestored, update.Reason)
		if update.UserID == 10 {
			assert.Equal(t, 1234, update.Steps)
		}
	}
}

func TestRecoverWithNothingActive(t *testing.T) {
	store, _ := newTestStore(t)
	armer := &fakeArmer{}

	count, err := Recover(context.Background(), store, armer, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, armer.armed)
}
