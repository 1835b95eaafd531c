package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// IndicatorDirection tells which side of the threshold is a breach
type IndicatorDirection string

const (
	// IndicatorDirectionAbove breaches when the value exceeds the threshold
	IndicatorDirectionAbove IndicatorDirection = "above"
	// IndicatorDirectionBelow breaches when the value falls under the threshold
	IndicatorDirectionBelow IndicatorDirection = "below"
)

// IsValid checks if the direction is valid
func (d IndicatorDirection) IsValid() bool {
	switch d {
	case IndicatorDirectionAbove, IndicatorDirectionBelow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the direction
func (d IndicatorDirection) String() string {
	return string(d)
}

// ParseIndicatorDirection parses a string into an IndicatorDirection (case-insensitive)
func ParseIndicatorDirection(s string) (IndicatorDirection, error) {
	d := IndicatorDirection(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", goerr.New("invalid indicator direction", goerr.V("direction", s))
	}
	return d, nil
}
