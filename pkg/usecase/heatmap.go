package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type HeatmapUseCase struct {
	*engine
}

// Build places every risk of the tenant on the 5x5 matrix using the tenant's thresholds
func (uc *HeatmapUseCase) Build(ctx context.Context, tenantID string) (*model.Heatmap, error) {
	risks, err := uc.repo.Risk().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(TenantIDKey, tenantID))
	}

	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	thresholds := tenant.Heatmap
	if thresholds.IsZero() {
		thresholds = model.DefaultHeatmapThresholds()
	}

	return model.BuildHeatmap(risks, thresholds), nil
}
