// Package fitness holds the arithmetic behind measurements and goals.
package fitness

import (
	"math"
	"strings"
)

const (
	SexMale   = "male"
	SexFemale = "female"
)

// BodyFatNavy estimates body-fat percentage with the U.S. Navy circumference
// method. All lengths are centimetres. ok is false when the inputs cannot
// produce an estimate.
func BodyFatNavy(sex string, heightCM, waistCM, neckCM, hipCM float64) (pct float64, ok bool) {
	if heightCM <= 0 || waistCM <= 0 || neckCM <= 0 {
		return 0, false
	}

	var density float64
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case SexMale:
		span := waistCM - neckCM
		if span <= 0 {
			return 0, false
		}
		density = 1.0324 - 0.19077*math.Log10(span) + 0.15456*math.Log10(heightCM)
	case SexFemale:
		if hipCM <= 0 {
			return 0, false
		}
		span := waistCM + hipCM - neckCM
		if span <= 0 {
			return 0, false
		}
		density = 1.29579 - 0.35004*math.Log10(span) + 0.22100*math.Log10(heightCM)
	default:
		return 0, false
	}
	if density <= 0 {
		return 0, false
	}

	pct = 495/density - 450
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return Round(pct, 2), true
}

func BMI(weightKG, heightCM float64) (float64, bool) {
	if weightKG <= 0 || heightCM <= 0 {
		return 0, false
	}
	meters := heightCM / 100
	return Round(weightKG/(meters*meters), 2), true
}

func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
