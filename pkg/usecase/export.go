package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/service/riskcsv"
)

type ExportUseCase struct {
	*engine
}

// Export serializes every risk of the tenant as CSV, ordered by title
func (uc *ExportUseCase) Export(ctx context.Context, tenantID string) (string, error) {
	risks, err := uc.repo.Risk().List(ctx, tenantID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list risks", goerr.V(TenantIDKey, tenantID))
	}

	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].Title != risks[j].Title {
			return risks[i].Title < risks[j].Title
		}
		return risks[i].ID < risks[j].ID
	})

	return riskcsv.Serialize(risks), nil
}
