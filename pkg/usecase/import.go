package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/service/riskcsv"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

type ImportUseCase struct {
	*engine
}

func rowToInput(row *riskcsv.Row) *RiskInput {
	in := &RiskInput{
		Title:              row.Title,
		Description:        row.Description,
		Cause:              row.Cause,
		Consequence:        row.Consequence,
		Taxonomy:           row.Taxonomy,
		OwnerEmail:         row.OwnerEmail,
		ResidualLikelihood: row.ResidualLikelihood,
		ResidualImpact:     row.ResidualImpact,
		Status:             row.Status,
		Tags:               row.Tags,
	}
	if row.InherentLikelihood != nil {
		in.InherentLikelihood = *row.InherentLikelihood
	}
	if row.InherentImpact != nil {
		in.InherentImpact = *row.InherentImpact
	}
	if row.KeyRisk != nil {
		in.KeyRisk = *row.KeyRisk
	}
	return in
}

// ImportRow creates one risk from a validated row, scored against the tenant appetite
func (uc *ImportUseCase) ImportRow(ctx context.Context, tenantID string, row *riskcsv.Row) (*model.Risk, error) {
	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return uc.importRow(ctx, tenantID, row, tenant)
}

func (uc *ImportUseCase) importRow(ctx context.Context, tenantID string, row *riskcsv.Row, tenant *model.TenantRiskSettings) (*model.Risk, error) {
	if err := riskcsv.ValidateRow(row); err != nil {
		return nil, err
	}

	in := rowToInput(row)
	in.OwnerID = uc.resolveOwner(ctx, tenantID, row.OwnerEmail)

	created, err := uc.repo.Risk().Create(ctx, tenantID, newScoredRisk(in, tenant.Appetite))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("line", row.Line))
	}
	return created, nil
}

// ImportRisks parses csvText and creates one risk per valid row in line order. A failing row
// is reported in the result and never stops the batch.
func (uc *ImportUseCase) ImportRisks(ctx context.Context, tenantID, actorID, csvText string) (*model.ImportResult, error) {
	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	parsed := riskcsv.Parse(csvText)
	result := &model.ImportResult{
		Errors: append([]model.RowError{}, parsed.Errors...),
	}

	for _, row := range parsed.Rows {
		if _, err := uc.importRow(ctx, tenantID, row, tenant); err != nil {
			logging.From(ctx).Warn("failed to import risk row",
				"error", err,
				"tenant_id", tenantID,
				"line", row.Line)
			result.Errors = append(result.Errors, model.RowError{
				Line:    row.Line,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
	}

	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Line < result.Errors[j].Line
	})

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityRisk,
		Type:     types.EventRiskImported,
		Diff: map[string]any{
			"imported": result.Imported,
			"failed":   len(result.Errors),
		},
	})

	return result, nil
}
