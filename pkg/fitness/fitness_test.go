package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBodyFatNavyMale(t *testing.T) {
	pct, ok := BodyFatNavy("male", 180, 90, 40, 0)
	require.True(t, ok)
	require.InDelta(t, 18.37, pct, 0.05)
}

func TestBodyFatNavyFemale(t *testing.T) {
	pct, ok := BodyFatNavy("Female", 165, 75, 33, 100)
	require.True(t, ok)
	require.InDelta(t, 29.43, pct, 0.05)
}

func TestBodyFatNavyRejectsIncompleteInput(t *testing.T) {
	cases := []struct {
		name                     string
		sex                      string
		height, waist, neck, hip float64
	}{
		{"missing height", "male", 0, 90, 40, 0},
		{"neck wider than waist", "male", 180, 40, 45, 0},
		{"female without hip", "female", 165, 75, 33, 0},
		{"unknown sex", "other", 170, 80, 35, 95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := BodyFatNavy(tc.sex, tc.height, tc.waist, tc.neck, tc.hip)
			require.False(t, ok)
		})
	}
}

func TestBMI(t *testing.T) {
	bmi, ok := BMI(72, 180)
	require.True(t, ok)
	require.Equal(t, 22.22, bmi)

	_, ok = BMI(72, 0)
	require.False(t, ok)
}

func TestIsGoalFulfilledUsesTolerance(t *testing.T) {
	require.True(t, IsGoalFulfilled(DirectionLose, 70, 70.5))
	require.False(t, IsGoalFulfilled(DirectionLose, 70, 70.6))
	require.True(t, IsGoalFulfilled(DirectionLose, 70, 68))

	require.True(t, IsGoalFulfilled(DirectionGain, 80, 79.5))
	require.False(t, IsGoalFulfilled(DirectionGain, 80, 79.4))
	require.False(t, IsGoalFulfilled("sideways", 80, 80))
}

func TestDirectionFor(t *testing.T) {
	require.Equal(t, DirectionLose, DirectionFor(90, 80))
	require.Equal(t, DirectionGain, DirectionFor(60, 65))
}

func TestIsGoalExpired(t *testing.T) {
	deadline := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	require.False(t, IsGoalExpired(deadline, false, time.Date(2030, 6, 1, 23, 59, 0, 0, time.UTC), time.UTC))
	require.True(t, IsGoalExpired(deadline, false, time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC), time.UTC))
	require.False(t, IsGoalExpired(deadline, true, time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC))
}

func TestGoalProgressPct(t *testing.T) {
	require.Equal(t, 50.0, GoalProgressPct(90, 80, 85))
	require.Equal(t, 0.0, GoalProgressPct(90, 80, 92))
	require.Equal(t, 100.0, GoalProgressPct(90, 80, 78))
	require.Equal(t, 40.0, GoalProgressPct(60, 65, 62))
	require.Equal(t, 100.0, GoalProgressPct(70, 70, 71))
}
