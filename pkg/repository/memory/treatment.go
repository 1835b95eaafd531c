package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type treatmentRepository struct {
	mu         sync.RWMutex
	treatments map[string]map[string]*model.Treatment
}

func newTreatmentRepository() *treatmentRepository {
	return &treatmentRepository{
		treatments: make(map[string]map[string]*model.Treatment),
	}
}

func (r *treatmentRepository) Create(ctx context.Context, tenantID string, treatment *model.Treatment) (*model.Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.treatments[tenantID]; !exists {
		r.treatments[tenantID] = make(map[string]*model.Treatment)
	}

	now := time.Now().UTC()
	created := copyTreatment(treatment)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	for i := range created.Tasks {
		if created.Tasks[i].ID == "" {
			created.Tasks[i].ID = uuid.NewString()
		}
	}
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	r.treatments[tenantID][created.ID] = created
	return copyTreatment(created), nil
}

func (r *treatmentRepository) Get(ctx context.Context, tenantID, id string) (*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	treatment, exists := r.treatments[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}

	return copyTreatment(treatment), nil
}

func (r *treatmentRepository) List(ctx context.Context, tenantID string) ([]*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Treatment, 0, len(r.treatments[tenantID]))
	for _, t := range r.treatments[tenantID] {
		result = append(result, copyTreatment(t))
	}
	return result, nil
}

func (r *treatmentRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Treatment{}
	for _, t := range r.treatments[tenantID] {
		if t.RiskID == riskID {
			result = append(result, copyTreatment(t))
		}
	}
	return result, nil
}

func (r *treatmentRepository) Update(ctx context.Context, tenantID string, treatment *model.Treatment) (*model.Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.treatments[tenantID][treatment.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("tenant_id", tenantID), goerr.V("id", treatment.ID))
	}

	updated := copyTreatment(treatment)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.treatments[tenantID][updated.ID] = updated
	return copyTreatment(updated), nil
}
