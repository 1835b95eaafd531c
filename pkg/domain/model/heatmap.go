package model

import (
	"sort"

	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// RiskSummary is the compact form of a Risk placed on a heatmap cell
type RiskSummary struct {
	ID               string
	Title            string
	Status           string
	Likelihood       int
	Impact           int
	ResidualScore    int
	AppetiteBreached bool
	KeyRisk          bool
}

// HeatmapCell is one likelihood/impact position of the 5x5 matrix
type HeatmapCell struct {
	Likelihood int
	Impact     int
	Score      int
	Color      types.HeatColor
	Count      int
	Risks      []RiskSummary
}

// HeatmapTotals aggregates the whole matrix
type HeatmapTotals struct {
	TotalRisks       int
	AppetiteBreaches int
}

// Heatmap is the 5x5 likelihood/impact matrix keyed by "{likelihood}-{impact}"
type Heatmap struct {
	Thresholds HeatmapThresholds
	CellMap    map[string]*HeatmapCell
	Totals     HeatmapTotals
}

// BuildHeatmap places each risk at its effective residual position and colors every cell by
// its score. All 25 cells are present even when empty.
func BuildHeatmap(risks []*Risk, thresholds HeatmapThresholds) *Heatmap {
	hm := &Heatmap{
		Thresholds: thresholds,
		CellMap:    make(map[string]*HeatmapCell, types.MaxLevel*types.MaxLevel),
	}

	for l := types.MinLevel; l <= types.MaxLevel; l++ {
		for i := types.MinLevel; i <= types.MaxLevel; i++ {
			score := l * i
			hm.CellMap[MatrixBucket(l, i)] = &HeatmapCell{
				Likelihood: l,
				Impact:     i,
				Score:      score,
				Color:      thresholds.Classify(float64(score)),
				Risks:      []RiskSummary{},
			}
		}
	}

	for _, r := range risks {
		l, i := r.EffectiveResidual()
		l, i = types.ClampLevel(l), types.ClampLevel(i)
		cell := hm.CellMap[MatrixBucket(l, i)]
		cell.Count++
		cell.Risks = append(cell.Risks, RiskSummary{
			ID:               r.ID,
			Title:            r.Title,
			Status:           r.Status,
			Likelihood:       l,
			Impact:           i,
			ResidualScore:    r.EffectiveScore(),
			AppetiteBreached: r.AppetiteBreached,
			KeyRisk:          r.KeyRisk,
		})

		hm.Totals.TotalRisks++
		if r.AppetiteBreached {
			hm.Totals.AppetiteBreaches++
		}
	}

	return hm
}

// Cell returns the cell at likelihood l and impact i, or nil when out of range
func (h *Heatmap) Cell(l, i int) *HeatmapCell {
	return h.CellMap[MatrixBucket(l, i)]
}

// Cells returns the 25 cells in row-major order, likelihood 5 first so the
// matrix reads top-down the way it is usually drawn.
func (h *Heatmap) Cells() []*HeatmapCell {
	cells := make([]*HeatmapCell, 0, len(h.CellMap))
	for l := types.MaxLevel; l >= types.MinLevel; l-- {
		for i := types.MinLevel; i <= types.MaxLevel; i++ {
			cells = append(cells, h.CellMap[MatrixBucket(l, i)])
		}
	}
	return cells
}

// CountByColor returns the number of risks in cells of each color. Colors without risks are absent.
func (h *Heatmap) CountByColor() map[types.HeatColor]int {
	counts := make(map[types.HeatColor]int)
	for _, cell := range h.CellMap {
		if cell.Count > 0 {
			counts[cell.Color] += cell.Count
		}
	}
	return counts
}

// TopRisks returns up to n risks with the highest residual score. Ties are ordered by title.
func (h *Heatmap) TopRisks(n int) []RiskSummary {
	var all []RiskSummary
	for _, cell := range h.CellMap {
		all = append(all, cell.Risks...)
	}

	sort.Slice(all, func(a, b int) bool {
		if all[a].ResidualScore != all[b].ResidualScore {
			return all[a].ResidualScore > all[b].ResidualScore
		}
		if all[a].Title != all[b].Title {
			return all[a].Title < all[b].Title
		}
		return all[a].ID < all[b].ID
	})

	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
