package scoring

import "github.com/neonzero/OpenERM/pkg/domain/types"

// EvaluateIndicator reports whether value breaches threshold in the given direction.
// Equality never breaches and a nil threshold never breaches.
func EvaluateIndicator(direction types.IndicatorDirection, value float64, threshold *float64) bool {
	if threshold == nil {
		return false
	}
	switch direction {
	case types.IndicatorDirectionAbove:
		return value > *threshold
	case types.IndicatorDirectionBelow:
		return value < *threshold
	default:
		return false
	}
}
