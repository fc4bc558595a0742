package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCounterBaseline(t *testing.T) {
	state, transition, err := Apply(CounterState{}, SensorCounter, 1000, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, ResetInitial, transition.Reset)
	assert.True(t, state.Initialized)
	assert.Equal(t, int64(1000), state.Baseline)
	assert.Equal(t, 0, state.StepsToday)

	state, transition, err = Apply(state, SensorCounter, 1250, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, transition.Reset)
	assert.Equal(t, 250, state.StepsToday)
	assert.Equal(t, int64(1250), state.LastCumulative)
}

func TestApplyCounterRebootKeepsTodaysSteps(t *testing.T) {
	state := CounterState{
		Day:            "2024-03-01",
		Baseline:       1000,
		LastCumulative: 1250,
		StepsToday:     250,
		Initialized:    true,
	}

	state, transition, err := Apply(state, SensorCounter, 30, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, ResetReboot, transition.Reset)
	assert.Equal(t, 250, state.StepsToday)
	assert.Equal(t, 250, state.Carry)

	state, transition, err = Apply(state, SensorCounter, 130, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, transition.Reset)
	assert.Equal(t, 350, state.StepsToday)
}

func TestApplyDayRolloverResetsOncePerDay(t *testing.T) {
	state := CounterState{
		Day:            "2024-03-01",
		Baseline:       1000,
		LastCumulative: 1350,
		StepsToday:     350,
		LastForwarded:  350,
		Initialized:    true,
	}

	state, transition, err := Apply(state, SensorCounter, 1400, "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, ResetDay, transition.Reset)
	assert.Equal(t, "2024-03-01", transition.ClosedDay)
	assert.Equal(t, 350, transition.ClosedSteps)
	assert.Equal(t, "2024-03-02", state.Day)
	assert.Equal(t, int64(1400), state.Baseline)
	assert.Equal(t, 0, state.StepsToday)
	assert.Equal(t, 0, state.LastForwarded)

	state, transition, err = Apply(state, SensorCounter, 1420, "2024-03-02")
	require.NoError(t, err)
	assert.Empty(t, transition.Reset)
	assert.Empty(t, transition.ClosedDay)
	assert.Equal(t, 20, state.StepsToday)
}

func TestApplyDetectorIncrements(t *testing.T) {
	state, transition, err := Apply(CounterState{}, SensorDetector, 1, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, ResetInitial, transition.Reset)
	assert.Equal(t, 1, state.StepsToday)

	for i := 0; i < 4; i++ {
		state, _, err = Apply(state, SensorDetector, 1, "2024-03-01")
		require.NoError(t, err)
	}
	assert.Equal(t, 5, state.StepsToday)

	state, transition, err = Apply(state, SensorDetector, 2, "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, ResetDay, transition.Reset)
	assert.Equal(t, 5, transition.ClosedSteps)
	assert.Equal(t, 2, state.StepsToday)
}

func TestApplyIgnoresReadingsFromPastDays(t *testing.T) {
	state := CounterState{Day: "2024-03-02", StepsToday: 40, LastCumulative: 540, Baseline: 500, Initialized: true}

	next, transition, err := Apply(state, SensorCounter, 9000, "2024-03-01")
	require.NoError(t, err)
	assert.True(t, transition.Stale)
	assert.Equal(t, state, next)
}

func TestApplyRejectsInvalidReadings(t *testing.T) {
	tests := []struct {
		name   string
		sensor string
		value  int64
	}{
		{name: "unknown sensor", sensor: "gyroscope", value: 10},
		{name: "negative counter", sensor: SensorCounter, value: -1},
		{name: "zero detector", sensor: SensorDetector, value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(CounterState{}, tt.sensor, tt.value, "2024-03-01")
			require.ErrorIs(t, err, ErrInvalidReading)
		})
	}
}

func TestShouldForward(t *testing.T) {
	tests := []struct {
		steps     int
		forwarded int
		want      bool
	}{
		{steps: 0, forwarded: 0, want: false},
		{steps: 9, forwarded: 0, want: false},
		{steps: 10, forwarded: 0, want: false},
		{steps: 11, forwarded: 0, want: true},
		{steps: 125, forwarded: 120, want: false},
		{steps: 0, forwarded: 40, want: true},
	}

	for _, tt := range tests {
		got := ShouldForward(CounterState{StepsToday: tt.steps, LastForwarded: tt.forwarded}, DefaultForwardThreshold)
		assert.Equal(t, tt.want, got, "steps=%d forwarded=%d", tt.steps, tt.forwarded)
	}
}
