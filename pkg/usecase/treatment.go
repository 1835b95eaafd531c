package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/scoring"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

const minTreatmentTitleLength = 3

type TreatmentUseCase struct {
	*engine
}

// TaskInput describes a task created together with a treatment
type TaskInput struct {
	Title   string
	Status  string
	DueDate *time.Time
}

// TreatmentInput describes a new treatment. An empty Status starts the workflow at Open.
type TreatmentInput struct {
	RiskID  string
	Title   string
	OwnerID *string
	DueDate *time.Time
	Status  types.TreatmentStatus
	Tasks   []TaskInput
}

// TaskUpdate is a partial update of one existing task
type TaskUpdate struct {
	ID      string
	Status  *string
	DueDate *time.Time
}

// TreatmentStatusUpdate moves a treatment through the workflow. Residual scores are applied
// to the risk only when the target status is Verified and both are given.
type TreatmentStatusUpdate struct {
	Status             types.TreatmentStatus
	ResidualLikelihood *int
	ResidualImpact     *int
	Tasks              []TaskUpdate
}

func (uc *TreatmentUseCase) CreateTreatment(ctx context.Context, tenantID, actorID string, in TreatmentInput) (*model.Treatment, error) {
	title := strings.TrimSpace(in.Title)
	if len([]rune(title)) < minTreatmentTitleLength {
		return nil, validationError("treatment title must be at least 3 characters", "title", in.Title)
	}
	status := in.Status
	if status == "" {
		status = types.TreatmentStatusOpen
	}
	if !status.IsValid() {
		return nil, validationError("invalid treatment status", "status", in.Status)
	}

	risk, err := uc.getRisk(ctx, tenantID, in.RiskID)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.TreatmentTask, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return nil, validationError("task title is required", "tasks.title", t.Title)
		}
		taskStatus := t.Status
		if taskStatus == "" {
			taskStatus = model.DefaultTaskStatus
		}
		tasks = append(tasks, model.TreatmentTask{
			Title:   strings.TrimSpace(t.Title),
			Status:  taskStatus,
			DueDate: t.DueDate,
		})
	}

	created, err := uc.repo.Treatment().Create(ctx, tenantID, &model.Treatment{
		RiskID:  risk.ID,
		Title:   title,
		OwnerID: in.OwnerID,
		DueDate: in.DueDate,
		Status:  status,
		Tasks:   tasks,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create treatment", goerr.V(RiskIDKey, risk.ID))
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityTreatment,
		EntityID: created.ID,
		Type:     types.EventTreatmentCreated,
		Diff: map[string]any{
			"riskId": risk.ID,
			"status": created.Status.String(),
		},
	})

	return created, nil
}

func (uc *TreatmentUseCase) GetTreatment(ctx context.Context, tenantID, treatmentID string) (*model.Treatment, error) {
	treatment, err := uc.repo.Treatment().Get(ctx, tenantID, treatmentID)
	if err != nil {
		return nil, notFoundOr(err, ErrTreatmentNotFound, "treatment not found", TreatmentIDKey, treatmentID)
	}
	return treatment, nil
}

// UpdateStatus applies a workflow transition. Every check runs before the first write, so a
// rejected update leaves the treatment and the risk untouched.
func (uc *TreatmentUseCase) UpdateStatus(ctx context.Context, tenantID, actorID, treatmentID string, update TreatmentStatusUpdate) (*model.Treatment, error) {
	treatment, err := uc.GetTreatment(ctx, tenantID, treatmentID)
	if err != nil {
		return nil, err
	}

	if !update.Status.IsValid() {
		return nil, validationError("invalid treatment status", "status", update.Status)
	}
	if update.ResidualLikelihood != nil && !types.ValidLevel(*update.ResidualLikelihood) {
		return nil, validationError("residualLikelihood must be between 1 and 5", "residualLikelihood", *update.ResidualLikelihood)
	}
	if update.ResidualImpact != nil && !types.ValidLevel(*update.ResidualImpact) {
		return nil, validationError("residualImpact must be between 1 and 5", "residualImpact", *update.ResidualImpact)
	}

	from := treatment.Status
	if !from.CanTransitionTo(update.Status) {
		return nil, goerr.Wrap(ErrInvalidTransition, "treatment status transition is not allowed",
			goerr.V(TreatmentIDKey, treatmentID),
			goerr.V("from", from.String()),
			goerr.V("to", update.Status.String()),
			goerr.V(AllowedStatusesKey, allowedNames(from)))
	}

	for _, task := range update.Tasks {
		if treatment.TaskIndex(task.ID) < 0 {
			return nil, validationError("unknown task", "tasks.id", task.ID)
		}
	}

	rescore := update.Status == types.TreatmentStatusVerified &&
		update.ResidualLikelihood != nil && update.ResidualImpact != nil

	var risk *model.Risk
	var tenant *model.TenantRiskSettings
	if rescore {
		if risk, err = uc.getRisk(ctx, tenantID, treatment.RiskID); err != nil {
			return nil, err
		}
		if tenant, err = uc.tenantSettings(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	treatment.Status = update.Status
	for _, task := range update.Tasks {
		idx := treatment.TaskIndex(task.ID)
		if task.Status != nil {
			treatment.Tasks[idx].Status = *task.Status
		}
		if task.DueDate != nil {
			due := *task.DueDate
			treatment.Tasks[idx].DueDate = &due
		}
	}

	updated, err := uc.repo.Treatment().Update(ctx, tenantID, treatment)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update treatment", goerr.V(TreatmentIDKey, treatmentID))
	}

	diff := map[string]any{
		"from": from.String(),
		"to":   updated.Status.String(),
	}

	if rescore {
		threshold := scoring.ResolveEffectiveAppetite(nil, risk.AppetiteThreshold, tenant.Appetite)
		residual := scoring.Evaluate(*update.ResidualLikelihood, *update.ResidualImpact, threshold)
		if _, err := uc.repo.Risk().UpdateResidual(ctx, tenantID, risk.ID, residual); err != nil {
			return nil, goerr.Wrap(err, "failed to update risk residual",
				goerr.V(RiskIDKey, risk.ID),
				goerr.V(TreatmentIDKey, treatmentID))
		}
		diff["residualScore"] = residual.Score
		diff["appetiteBreached"] = residual.AppetiteBreached
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityTreatment,
		EntityID: updated.ID,
		Type:     types.EventTreatmentStatusChanged,
		Diff:     diff,
	})

	return updated, nil
}

// ListTreatments returns the treatments of a risk
func (uc *TreatmentUseCase) ListTreatments(ctx context.Context, tenantID, riskID string) ([]*model.Treatment, error) {
	if _, err := uc.getRisk(ctx, tenantID, riskID); err != nil {
		return nil, err
	}
	treatments, err := uc.repo.Treatment().ListByRisk(ctx, tenantID, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatments", goerr.V(RiskIDKey, riskID))
	}
	return treatments, nil
}

// ListOverdueTreatments returns treatments past due at now and not verified, earliest due first
func (uc *TreatmentUseCase) ListOverdueTreatments(ctx context.Context, tenantID string, now time.Time) ([]*model.Treatment, error) {
	treatments, err := uc.repo.Treatment().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatments", goerr.V(TenantIDKey, tenantID))
	}

	var overdue []*model.Treatment
	for _, t := range treatments {
		if t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		if !overdue[i].DueDate.Equal(*overdue[j].DueDate) {
			return overdue[i].DueDate.Before(*overdue[j].DueDate)
		}
		return overdue[i].ID < overdue[j].ID
	})

	return overdue, nil
}

// NotifyOverdue emits one overdue event per treatment past due at now and returns how many were found
func (uc *TreatmentUseCase) NotifyOverdue(ctx context.Context, tenantID string, now time.Time) (int, error) {
	overdue, err := uc.ListOverdueTreatments(ctx, tenantID, now)
	if err != nil {
		return 0, err
	}

	for _, t := range overdue {
		uc.emit(ctx, &model.Event{
			TenantID: tenantID,
			Entity:   types.EntityTreatment,
			EntityID: t.ID,
			Type:     types.EventTreatmentOverdue,
			Diff: map[string]any{
				"riskId":  t.RiskID,
				"status":  t.Status.String(),
				"dueDate": t.DueDate.UTC().Format(time.RFC3339),
			},
		})
	}

	return len(overdue), nil
}

func allowedNames(s types.TreatmentStatus) []string {
	next := s.AllowedNext()
	names := make([]string, len(next))
	for i, n := range next {
		names[i] = n.String()
	}
	return names
}
