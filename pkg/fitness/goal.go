package fitness

import "time"

// GoalToleranceKG is how close the current weight must get to the target.
const GoalToleranceKG = 0.5

const (
	DirectionGain = "gain"
	DirectionLose = "lose"
)

func DirectionFor(startKG, targetKG float64) string {
	if targetKG > startKG {
		return DirectionGain
	}
	return DirectionLose
}

func IsGoalFulfilled(direction string, targetKG, currentKG float64) bool {
	switch direction {
	case DirectionGain:
		return currentKG >= targetKG-GoalToleranceKG
	case DirectionLose:
		return currentKG <= targetKG+GoalToleranceKG
	default:
		return false
	}
}

// IsGoalExpired reports whether the whole deadline day has passed in loc.
func IsGoalExpired(deadline time.Time, fulfilled bool, now time.Time, loc *time.Location) bool {
	if fulfilled {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := deadline.Date()
	endOfDeadline := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return !now.Before(endOfDeadline)
}

// GoalProgressPct is the share of the start-to-target distance already covered,
// clamped to [0, 100].
func GoalProgressPct(startKG, targetKG, currentKG float64) float64 {
	total := startKG - targetKG
	if total == 0 {
		return 100
	}
	pct := (startKG - currentKG) / total * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return Round(pct, 1)
}
