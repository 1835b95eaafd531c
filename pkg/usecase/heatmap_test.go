package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/service/settings"
	"github.com/neonzero/OpenERM/pkg/usecase"
)

func TestHeatmapUseCase_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant thresholds color the cells", func(t *testing.T) {
		env := newTestEnvWithSettings(t, &settings.File{
			Tenants: []settings.TenantEntry{{
				ID:       testTenantID,
				Appetite: floatPtr(6),
				Heatmap: &settings.HeatmapEntry{
					GreenMax: floatPtr(4),
					AmberMax: floatPtr(10),
					RedMax:   floatPtr(25),
				},
			}},
		})
		risk := env.createRisk(t, usecase.RiskInput{
			Title:              "Cloud outage",
			InherentLikelihood: 5,
			InherentImpact:     5,
			ResidualLikelihood: intPtr(2),
			ResidualImpact:     intPtr(4),
		})
		env.seedRisk(t, "Staff churn", 1, 1)

		heatmap, err := env.uc.Heatmap.Build(ctx, testTenantID)
		gt.NoError(t, err).Required()
		gt.Array(t, heatmap.Cells()).Length(25)

		cell := heatmap.Cell(2, 4)
		gt.Value(t, cell.Score).Equal(8)
		gt.Value(t, cell.Color).Equal(types.HeatColorAmber)
		gt.Value(t, cell.Count).Equal(1)
		gt.Value(t, cell.Risks[0].ID).Equal(risk.ID)
		gt.Value(t, cell.Risks[0].Status).Equal(risk.Status)
		gt.Value(t, cell.Risks[0].Likelihood).Equal(2)
		gt.Value(t, cell.Risks[0].Impact).Equal(4)

		gt.Value(t, heatmap.Cell(1, 1).Count).Equal(1)
		gt.Value(t, heatmap.Cell(1, 4).Color).Equal(types.HeatColorGreen)
		gt.Value(t, heatmap.Cell(3, 4).Color).Equal(types.HeatColorRed)
		gt.Value(t, heatmap.Totals.TotalRisks).Equal(2)
		gt.Value(t, heatmap.Totals.AppetiteBreaches).Equal(1)
	})

	t.Run("default thresholds for unknown tenant", func(t *testing.T) {
		env := newTestEnv(t, nil)

		heatmap, err := env.uc.Heatmap.Build(ctx, "unconfigured")
		gt.NoError(t, err).Required()
		gt.Value(t, heatmap.Thresholds.GreenMax).Equal(5.0)
		gt.Value(t, heatmap.Cell(5, 5).Color).Equal(types.HeatColorRed)
		gt.Value(t, heatmap.Totals.TotalRisks).Equal(0)
	})
}
