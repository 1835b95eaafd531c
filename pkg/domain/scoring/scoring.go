// Package scoring holds the pure risk scoring rules: residual score, heat classification,
// appetite breach, threshold/residual resolution and key risk indicator evaluation.
package scoring

import (
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// ResidualScore returns likelihood x impact. Callers validate the 1..5 range at their boundary.
func ResidualScore(likelihood, impact int) int {
	return likelihood * impact
}

// Classify maps a score onto a heat color using the tenant thresholds
func Classify(score float64, thresholds model.HeatmapThresholds) types.HeatColor {
	return thresholds.Classify(score)
}

// AppetiteBreached reports whether score strictly exceeds appetite. No appetite means no breach.
func AppetiteBreached(score int, appetite *float64) bool {
	if appetite == nil {
		return false
	}
	return float64(score) > *appetite
}

// ResolveEffectiveAppetite returns the first configured threshold in precedence order:
// per-assessment override, the value stored on the risk, the tenant appetite.
func ResolveEffectiveAppetite(override, riskStored, tenant *float64) *float64 {
	for _, v := range []*float64{override, riskStored, tenant} {
		if v != nil {
			resolved := *v
			return &resolved
		}
	}
	return nil
}

// ResolveEffectiveResidual resolves one residual axis for an assessment:
// submitted value, else the value stored on the risk, else the submitted inherent value.
func ResolveEffectiveResidual(submitted, stored *int, inherent int) int {
	if submitted != nil {
		return *submitted
	}
	if stored != nil {
		return *stored
	}
	return inherent
}

// ResolveImportResidual resolves one residual axis for a freshly imported risk, which has
// nothing stored yet.
func ResolveImportResidual(submitted *int, inherent int) int {
	if submitted != nil {
		return *submitted
	}
	return inherent
}

// Evaluate computes the residual update for the given residual axes and threshold
func Evaluate(likelihood, impact int, threshold *float64) model.ResidualUpdate {
	score := ResidualScore(likelihood, impact)
	return model.ResidualUpdate{
		Likelihood:        likelihood,
		Impact:            impact,
		Score:             score,
		AppetiteThreshold: threshold,
		AppetiteBreached:  AppetiteBreached(score, threshold),
	}
}
