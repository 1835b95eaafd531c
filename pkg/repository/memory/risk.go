package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[string]map[string]*model.Risk
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: make(map[string]map[string]*model.Risk),
	}
}

func (r *riskRepository) ensureTenant(tenantID string) {
	if _, exists := r.risks[tenantID]; !exists {
		r.risks[tenantID] = make(map[string]*model.Risk)
	}
}

func (r *riskRepository) Create(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(tenantID)

	now := time.Now().UTC()
	created := copyRisk(risk)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	r.risks[tenantID][created.ID] = created
	return copyRisk(created), nil
}

func (r *riskRepository) Get(ctx context.Context, tenantID, id string) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}

	return copyRisk(risk), nil
}

func (r *riskRepository) List(ctx context.Context, tenantID string) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, exists := r.risks[tenantID]
	if !exists {
		return []*model.Risk{}, nil
	}

	risks := make([]*model.Risk, 0, len(ws))
	for _, risk := range ws {
		risks = append(risks, copyRisk(risk))
	}

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[tenantID][risk.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", risk.ID))
	}

	updated := copyRisk(risk)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.risks[tenantID][updated.ID] = updated
	return copyRisk(updated), nil
}

func (r *riskRepository) UpdateResidual(ctx context.Context, tenantID, id string, update model.ResidualUpdate) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}

	updated := copyRisk(existing)
	updated.ApplyResidual(update)
	updated.UpdatedAt = time.Now().UTC()

	r.risks[tenantID][id] = updated
	return copyRisk(updated), nil
}
