package usecase

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/scoring"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// Appetite thresholds are expressed on the 1..25 residual score scale
const (
	MinAppetite = 1
	MaxAppetite = 25
)

type AssessmentUseCase struct {
	*engine
}

// AssessmentInput is one assessment submission
type AssessmentInput struct {
	RiskID     string
	Method     types.AssessmentMethod
	Scores     model.AssessmentScores
	ReviewerID *string
	Notes      string
}

// Validate checks score ranges and the method. An empty method is accepted and read as qual.
func (in *AssessmentInput) Validate() error {
	if in.RiskID == "" {
		return validationError("risk ID is required", "riskId", in.RiskID)
	}
	if in.Method != "" && !in.Method.IsValid() {
		return validationError("method must be qual or quant", "method", in.Method)
	}

	s := in.Scores
	if !types.ValidLevel(s.Likelihood) {
		return validationError("likelihood must be between 1 and 5", "likelihood", s.Likelihood)
	}
	if !types.ValidLevel(s.Impact) {
		return validationError("impact must be between 1 and 5", "impact", s.Impact)
	}
	optional := []struct {
		field string
		value *int
	}{
		{"residualLikelihood", s.ResidualLikelihood},
		{"residualImpact", s.ResidualImpact},
		{"velocity", s.Velocity},
	}
	for _, o := range optional {
		if o.value != nil && !types.ValidLevel(*o.value) {
			return validationError(o.field+" must be between 1 and 5", o.field, *o.value)
		}
	}
	if err := validateAppetite("appetiteThreshold", s.AppetiteThreshold); err != nil {
		return err
	}
	return nil
}

func validateAppetite(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < MinAppetite || *v > MaxAppetite {
		return validationError(field+" must be between 1 and 25", field, *v)
	}
	return nil
}

// SubmitAssessment records an assessment and rescoring of the risk's residual fields.
// Nothing is written when the risk does not exist for the tenant.
func (uc *AssessmentUseCase) SubmitAssessment(ctx context.Context, tenantID, actorID string, in AssessmentInput) (*model.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Method == "" {
		in.Method = types.AssessmentMethodQualitative
	}

	risk, err := uc.getRisk(ctx, tenantID, in.RiskID)
	if err != nil {
		return nil, err
	}

	tenant, err := uc.tenantSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	scores := in.Scores
	likelihood := scoring.ResolveEffectiveResidual(scores.ResidualLikelihood, risk.ResidualLikelihood, scores.Likelihood)
	impact := scoring.ResolveEffectiveResidual(scores.ResidualImpact, risk.ResidualImpact, scores.Impact)
	threshold := scoring.ResolveEffectiveAppetite(scores.AppetiteThreshold, risk.AppetiteThreshold, tenant.Appetite)
	update := scoring.Evaluate(likelihood, impact, threshold)

	assessment := &model.Assessment{
		RiskID:        risk.ID,
		Method:        in.Method,
		Scores:        scores,
		ResidualScore: update.Score,
		MatrixBucket:  model.MatrixBucket(scores.Likelihood, scores.Impact),
		ReviewerID:    in.ReviewerID,
		Notes:         in.Notes,
	}
	if in.ReviewerID != nil {
		approvedAt := uc.now()
		assessment.ApprovedAt = &approvedAt
	}

	created, err := uc.repo.Assessment().Create(ctx, tenantID, assessment)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V(RiskIDKey, risk.ID))
	}

	if _, err := uc.repo.Risk().UpdateResidual(ctx, tenantID, risk.ID, update); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk residual", goerr.V(RiskIDKey, risk.ID))
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityRisk,
		EntityID: risk.ID,
		Type:     types.EventRiskAssessed,
		Diff: map[string]any{
			"assessmentId":     created.ID,
			"matrixBucket":     created.MatrixBucket,
			"residualScore":    update.Score,
			"appetiteBreached": update.AppetiteBreached,
		},
	})

	return created, nil
}

// ListAssessments returns the assessments of a risk, newest first
func (uc *AssessmentUseCase) ListAssessments(ctx context.Context, tenantID, riskID string) ([]*model.Assessment, error) {
	if _, err := uc.getRisk(ctx, tenantID, riskID); err != nil {
		return nil, err
	}

	assessments, err := uc.repo.Assessment().ListByRisk(ctx, tenantID, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments", goerr.V(RiskIDKey, riskID))
	}
	return assessments, nil
}
