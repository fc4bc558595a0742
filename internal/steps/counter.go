package steps

import (
	"errors"
	"time"
)

const (
	SensorCounter  = "counter"
	SensorDetector = "detector"

	DayLayout = "2006-01-02"
)

const (
	ResetInitial = "initial"
	ResetDay     = "day"
	ResetReboot  = "reboot"
)

var (
	ErrInvalidReading  = errors.New("invalid step reading")
	ErrCounterInactive = errors.New("step counter is not active")
)

// Reading is one sensor callback as reported by the device.
// Counter readings carry the cumulative hardware value since boot,
// detector readings carry an increment.
type Reading struct {
	Sensor     string    `json:"sensor"`
	Value      int64     `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
	Timezone   string    `json:"timezone,omitempty"`
	BatteryLow bool      `json:"battery_low"`
}

// CounterState is the per-user bookkeeping persisted between readings.
type CounterState struct {
	Day            string
	Baseline       int64
	Carry          int
	LastCumulative int64
	StepsToday     int
	LastForwarded  int
	BatteryLow     bool
	Initialized    bool
	// Timezone is the IANA zone the device last reported, empty for the
	// server default.
	Timezone string
}

type Transition struct {
	Reset       string
	ClosedDay   string
	ClosedSteps int
	Stale       bool
}

// Apply folds a single reading into state. day is the calendar day of the
// reading in the user's timezone.
func Apply(state CounterState, sensor string, value int64, day string) (CounterState, Transition, error) {
	var transition Transition

	switch sensor {
	case SensorCounter:
		if value < 0 {
			return state, transition, ErrInvalidReading
		}
	case SensorDetector:
		if value <= 0 {
			return state, transition, ErrInvalidReading
		}
	default:
		return state, transition, ErrInvalidReading
	}

	if state.Initialized && day < state.Day {
		transition.Stale = true
		return state, transition, nil
	}

	next := state
	switch {
	case !state.Initialized:
		next = CounterState{Day: day, Initialized: true, BatteryLow: state.BatteryLow}
		transition.Reset = ResetInitial
	case day != state.Day:
		transition.ClosedDay = state.Day
		transition.ClosedSteps = state.StepsToday
		next = CounterState{Day: day, Initialized: true, BatteryLow: state.BatteryLow}
		transition.Reset = ResetDay
	}

	if sensor == SensorDetector {
		next.StepsToday += int(value)
		return next, transition, nil
	}

	switch {
	case transition.Reset != "":
		next.Baseline = value
	case value < state.LastCumulative:
		// device rebooted, keep what was already counted today
		next.Carry = state.StepsToday
		next.Baseline = value
		transition.Reset = ResetReboot
	}
	next.LastCumulative = value
	next.StepsToday = next.Carry + int(value-next.Baseline)
	return next, transition, nil
}

// ShouldForward reports whether steps today moved by more than threshold
// since the last forwarded value.
func ShouldForward(state CounterState, threshold int) bool {
	delta := state.StepsToday - state.LastForwarded
	if delta < 0 {
		delta = -delta
	}
	return delta > threshold
}

func DayOf(at time.Time, loc *time.Location) string {
	return at.In(loc).Format(DayLayout)
}

func ParseDay(day string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, loc)
}
