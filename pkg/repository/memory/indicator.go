package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type indicatorRepository struct {
	mu         sync.RWMutex
	indicators map[string]map[string]*model.Indicator
	readings   map[string][]*model.IndicatorReading
}

func newIndicatorRepository() *indicatorRepository {
	return &indicatorRepository{
		indicators: make(map[string]map[string]*model.Indicator),
		readings:   make(map[string][]*model.IndicatorReading),
	}
}

func (r *indicatorRepository) Create(ctx context.Context, tenantID string, indicator *model.Indicator) (*model.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[tenantID]; !exists {
		r.indicators[tenantID] = make(map[string]*model.Indicator)
	}

	now := time.Now().UTC()
	created := copyIndicator(indicator)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	r.indicators[tenantID][created.ID] = created
	return copyIndicator(created), nil
}

func (r *indicatorRepository) Get(ctx context.Context, tenantID, id string) (*model.Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "indicator not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}
	return copyIndicator(indicator), nil
}

func (r *indicatorRepository) Update(ctx context.Context, tenantID string, indicator *model.Indicator) (*model.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.indicators[tenantID][indicator.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "indicator not found", goerr.V("tenant_id", tenantID), goerr.V("id", indicator.ID))
	}

	updated := copyIndicator(indicator)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.indicators[tenantID][updated.ID] = updated
	return copyIndicator(updated), nil
}

func (r *indicatorRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Indicator{}
	for _, ind := range r.indicators[tenantID] {
		if ind.RiskID == riskID {
			result = append(result, copyIndicator(ind))
		}
	}
	return result, nil
}

func (r *indicatorRepository) AddReading(ctx context.Context, tenantID string, reading *model.IndicatorReading) (*model.IndicatorReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[tenantID][reading.IndicatorID]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "indicator not found", goerr.V("tenant_id", tenantID), goerr.V("id", reading.IndicatorID))
	}

	created := copyReading(reading)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.RecordedAt.IsZero() {
		created.RecordedAt = time.Now().UTC()
	}

	r.readings[tenantID] = append(r.readings[tenantID], created)
	return copyReading(created), nil
}

func (r *indicatorRepository) ListReadings(ctx context.Context, tenantID, indicatorID string, since time.Time) ([]*model.IndicatorReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.IndicatorReading{}
	for _, reading := range r.readings[tenantID] {
		if reading.IndicatorID == indicatorID && !reading.RecordedAt.Before(since) {
			result = append(result, copyReading(reading))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}
