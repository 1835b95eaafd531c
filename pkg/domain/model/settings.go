package model

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// ErrInvalidSettings is returned when tenant risk settings fail validation
var ErrInvalidSettings = goerr.New("invalid tenant risk settings")

// Context keys for settings error values
const (
	GreenMaxKey = "green_max"
	AmberMaxKey = "amber_max"
	RedMaxKey   = "red_max"
	AppetiteKey = "appetite"
)

// HeatmapThresholds are the upper bounds (inclusive) of the green and amber bands
type HeatmapThresholds struct {
	GreenMax float64
	AmberMax float64
	RedMax   float64
}

// DefaultHeatmapThresholds returns the thresholds used when a tenant configures none
func DefaultHeatmapThresholds() HeatmapThresholds {
	return HeatmapThresholds{GreenMax: 5, AmberMax: 12, RedMax: 25}
}

// IsZero reports whether no threshold has been configured
func (t HeatmapThresholds) IsZero() bool {
	return t.GreenMax == 0 && t.AmberMax == 0 && t.RedMax == 0
}

// Classify maps a score onto a heat color. Scores on a boundary take the lower class.
func (t HeatmapThresholds) Classify(score float64) types.HeatColor {
	switch {
	case score <= t.GreenMax:
		return types.HeatColorGreen
	case score <= t.AmberMax:
		return types.HeatColorAmber
	default:
		return types.HeatColorRed
	}
}

// Validate checks the thresholds are ascending and within the 1..25 score range
func (t HeatmapThresholds) Validate() error {
	maxScore := float64(types.MaxLevel * types.MaxLevel)
	if t.GreenMax < 1 || t.RedMax > maxScore {
		return goerr.Wrap(ErrInvalidSettings, "heatmap thresholds out of range",
			goerr.V(GreenMaxKey, t.GreenMax), goerr.V(RedMaxKey, t.RedMax))
	}
	if !(t.GreenMax < t.AmberMax && t.AmberMax < t.RedMax) {
		return goerr.Wrap(ErrInvalidSettings, "heatmap thresholds must be ascending",
			goerr.V(GreenMaxKey, t.GreenMax), goerr.V(AmberMaxKey, t.AmberMax), goerr.V(RedMaxKey, t.RedMax))
	}
	return nil
}

// TenantRiskSettings is the typed per-tenant risk configuration
type TenantRiskSettings struct {
	Appetite *float64
	Heatmap  HeatmapThresholds
}

// DefaultTenantRiskSettings returns settings with no appetite and default thresholds
func DefaultTenantRiskSettings() *TenantRiskSettings {
	return &TenantRiskSettings{Heatmap: DefaultHeatmapThresholds()}
}

// Validate checks the appetite range and the heatmap thresholds
func (s *TenantRiskSettings) Validate() error {
	if s.Appetite != nil {
		maxScore := float64(types.MaxLevel * types.MaxLevel)
		if math.IsNaN(*s.Appetite) || *s.Appetite < 1 || *s.Appetite > maxScore {
			return goerr.Wrap(ErrInvalidSettings, "appetite out of range",
				goerr.V(AppetiteKey, *s.Appetite))
		}
	}
	return s.Heatmap.Validate()
}
