package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/scoring"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/service/riskcsv"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

type RiskUseCase struct {
	*engine
}

// RiskInput is a manually entered risk. OwnerEmail is resolved to an owner when OwnerID is nil.
type RiskInput struct {
	Title              string
	Description        string
	Cause              string
	Consequence        string
	Taxonomy           []string
	OwnerID            *string
	OwnerEmail         string
	InherentLikelihood int
	InherentImpact     int
	ResidualLikelihood *int
	ResidualImpact     *int
	Status             string
	KeyRisk            bool
	Tags               []string
}

func (in *RiskInput) toRow() *riskcsv.Row {
	likelihood, impact := in.InherentLikelihood, in.InherentImpact
	keyRisk := in.KeyRisk
	return &riskcsv.Row{
		Title:              in.Title,
		Description:        in.Description,
		Cause:              in.Cause,
		Consequence:        in.Consequence,
		OwnerEmail:         in.OwnerEmail,
		Taxonomy:           in.Taxonomy,
		InherentLikelihood: &likelihood,
		InherentImpact:     &impact,
		ResidualLikelihood: in.ResidualLikelihood,
		ResidualImpact:     in.ResidualImpact,
		Status:             in.Status,
		Tags:               in.Tags,
		KeyRisk:            &keyRisk,
	}
}

// Validate applies the same schema as CSV import
func (in *RiskInput) Validate() error {
	if err := riskcsv.ValidateRow(in.toRow()); err != nil {
		return goerr.Wrap(ErrValidation, err.Error(), goerr.V("title", in.Title))
	}
	return nil
}

// newScoredRisk builds a risk whose residual defaults to inherent and whose threshold is the
// tenant appetite
func newScoredRisk(in *RiskInput, appetite *float64) *model.Risk {
	likelihood := scoring.ResolveImportResidual(in.ResidualLikelihood, in.InherentLikelihood)
	impact := scoring.ResolveImportResidual(in.ResidualImpact, in.InherentImpact)
	threshold := scoring.ResolveEffectiveAppetite(nil, nil, appetite)

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.DefaultRiskStatus
	}

	risk := &model.Risk{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Cause:              in.Cause,
		Consequence:        in.Consequence,
		Taxonomy:           in.Taxonomy,
		OwnerID:            in.OwnerID,
		InherentLikelihood: in.InherentLikelihood,
		InherentImpact:     in.InherentImpact,
		Status:             status,
		KeyRisk:            in.KeyRisk,
		Tags:               in.Tags,
	}
	risk.ApplyResidual(scoring.Evaluate(likelihood, impact, threshold))
	return risk
}

// resolveOwner looks the owner up by e-mail. Lookup failures are logged and leave the risk unowned.
func (e *engine) resolveOwner(ctx context.Context, tenantID, email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	owner, err := e.repo.Owner().FindByEmail(ctx, tenantID, email)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve risk owner", "error", err, "tenant_id", tenantID)
		return nil
	}
	if owner == nil {
		return nil
	}
	id := owner.ID
	return &id
}

func (uc *RiskUseCase) CreateRisk(ctx context.Context, tenantID, actorID string, in RiskInput) (*model.Risk, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if in.OwnerID == nil {
		in.OwnerID = uc.resolveOwner(ctx, tenantID, in.OwnerEmail)
	}

	created, err := uc.repo.Risk().Create(ctx, tenantID, newScoredRisk(&in, tenant.Appetite))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V(TenantIDKey, tenantID))
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityRisk,
		EntityID: created.ID,
		Type:     types.EventRiskCreated,
		Diff: map[string]any{
			"residualScore":    *created.ResidualScore,
			"appetiteBreached": created.AppetiteBreached,
		},
	})

	return created, nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, tenantID, riskID string) (*model.Risk, error) {
	return uc.getRisk(ctx, tenantID, riskID)
}

// RiskSort orders ListRisks results
type RiskSort string

const (
	RiskSortUpdatedAt         RiskSort = "updatedAt"
	RiskSortResidualScoreAsc  RiskSort = "residualScoreAsc"
	RiskSortResidualScoreDesc RiskSort = "residualScoreDesc"
)

func (s RiskSort) IsValid() bool {
	switch s {
	case RiskSortUpdatedAt, RiskSortResidualScoreAsc, RiskSortResidualScoreDesc:
		return true
	default:
		return false
	}
}

// RiskQuery filters ListRisks. Zero values match everything. Likelihood and Impact select a
// heat-map cell by effective residual.
type RiskQuery struct {
	Search           string
	Status           string
	OwnerID          string
	Taxonomy         []string
	KeyRisk          *bool
	AppetiteBreached *bool
	Likelihood       *int
	Impact           *int
	Sort             RiskSort
}

func (q *RiskQuery) match(r *model.Risk) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	if q.Status != "" && !strings.EqualFold(q.Status, r.Status) {
		return false
	}
	if q.OwnerID != "" && (r.OwnerID == nil || *r.OwnerID != q.OwnerID) {
		return false
	}
	if len(q.Taxonomy) > 0 && !containsAnyFold(r.Taxonomy, q.Taxonomy) {
		return false
	}
	if q.KeyRisk != nil && r.KeyRisk != *q.KeyRisk {
		return false
	}
	if q.AppetiteBreached != nil && r.AppetiteBreached != *q.AppetiteBreached {
		return false
	}
	l, i := r.EffectiveResidual()
	if q.Likelihood != nil && types.ClampLevel(l) != *q.Likelihood {
		return false
	}
	if q.Impact != nil && types.ClampLevel(i) != *q.Impact {
		return false
	}
	return true
}

func containsAnyFold(values, wanted []string) bool {
	for _, v := range values {
		for _, w := range wanted {
			if strings.EqualFold(v, w) {
				return true
			}
		}
	}
	return false
}

func (uc *RiskUseCase) ListRisks(ctx context.Context, tenantID string, q RiskQuery) ([]*model.Risk, error) {
	if q.Sort == "" {
		q.Sort = RiskSortUpdatedAt
	}
	if !q.Sort.IsValid() {
		return nil, validationError("invalid sort order", "sort", q.Sort)
	}

	risks, err := uc.repo.Risk().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(TenantIDKey, tenantID))
	}

	result := make([]*model.Risk, 0, len(risks))
	for _, r := range risks {
		if q.match(r) {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch q.Sort {
		case RiskSortResidualScoreAsc:
			if a.EffectiveScore() != b.EffectiveScore() {
				return a.EffectiveScore() < b.EffectiveScore()
			}
		case RiskSortResidualScoreDesc:
			if a.EffectiveScore() != b.EffectiveScore() {
				return a.EffectiveScore() > b.EffectiveScore()
			}
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})

	return result, nil
}

// MarkKeyRisk flags or unflags a risk as a key risk
func (uc *RiskUseCase) MarkKeyRisk(ctx context.Context, tenantID, actorID, riskID string, keyRisk bool) (*model.Risk, error) {
	risk, err := uc.getRisk(ctx, tenantID, riskID)
	if err != nil {
		return nil, err
	}

	from := risk.KeyRisk
	risk.KeyRisk = keyRisk
	updated, err := uc.repo.Risk().Update(ctx, tenantID, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, riskID))
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityRisk,
		EntityID: riskID,
		Type:     types.EventRiskKeyRiskChanged,
		Diff: map[string]any{
			"from": from,
			"to":   keyRisk,
		},
	})

	return updated, nil
}

// RecalibrateAppetite snapshots the current tenant appetite onto every scored risk and
// recomputes the breach flag. Residual scores are kept. It returns the number of risks rewritten.
func (uc *RiskUseCase) RecalibrateAppetite(ctx context.Context, tenantID, actorID string) (int, error) {
	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	risks, err := uc.repo.Risk().List(ctx, tenantID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list risks", goerr.V(TenantIDKey, tenantID))
	}

	updated := 0
	breaches := 0
	for _, r := range risks {
		if r.ResidualScore == nil {
			continue
		}
		l, i := r.EffectiveResidual()
		residual := scoring.Evaluate(l, i, scoring.ResolveEffectiveAppetite(nil, nil, tenant.Appetite))
		if _, err := uc.repo.Risk().UpdateResidual(ctx, tenantID, r.ID, residual); err != nil {
			return updated, goerr.Wrap(err, "failed to update risk residual", goerr.V(RiskIDKey, r.ID))
		}
		updated++
		if residual.AppetiteBreached {
			breaches++
		}
	}

	diff := map[string]any{
		"updated":          updated,
		"appetiteBreaches": breaches,
	}
	if tenant.Appetite != nil {
		diff["appetite"] = *tenant.Appetite
	}
	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityRisk,
		Type:     types.EventAppetiteRecalibrated,
		Diff:     diff,
	})

	return updated, nil
}

// UpdateAppetite replaces the tenant appetite and recalibrates every scored risk against it. A nil
// appetite removes it. It returns the number of risks rewritten.
func (uc *RiskUseCase) UpdateAppetite(ctx context.Context, tenantID, actorID string, appetite *float64) (int, error) {
	if err := validateAppetite("appetite", appetite); err != nil {
		return 0, err
	}

	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	tenant.Appetite = appetite

	if err := uc.settings.SetTenant(ctx, tenantID, tenant); err != nil {
		return 0, goerr.Wrap(err, "failed to update tenant settings", goerr.V(TenantIDKey, tenantID))
	}

	return uc.RecalibrateAppetite(ctx, tenantID, actorID)
}
