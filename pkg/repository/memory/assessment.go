package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[string][]*model.Assessment
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[string][]*model.Assessment),
	}
}

func (r *assessmentRepository) Create(ctx context.Context, tenantID string, assessment *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAssessment(assessment)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.TenantID = tenantID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.assessments[tenantID] = append(r.assessments[tenantID], created)
	return copyAssessment(created), nil
}

func (r *assessmentRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Assessment{}
	for _, a := range r.assessments[tenantID] {
		if a.RiskID == riskID {
			result = append(result, copyAssessment(a))
		}
	}

	// Stable keeps insertion order for identical timestamps, reversed below
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result, nil
}
