package types

// Likelihood and impact are scored on a 1..5 scale
const (
	MinLevel = 1
	MaxLevel = 5
)

// ValidLevel reports whether v is a valid likelihood or impact score
func ValidLevel(v int) bool {
	return v >= MinLevel && v <= MaxLevel
}

// ClampLevel pins v into the 1..5 range
func ClampLevel(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
