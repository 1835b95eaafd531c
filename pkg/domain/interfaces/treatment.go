package interfaces

import (
	"context"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// TreatmentRepository defines the interface for Treatment data access
type TreatmentRepository interface {
	Create(ctx context.Context, tenantID string, treatment *model.Treatment) (*model.Treatment, error)
	Get(ctx context.Context, tenantID, id string) (*model.Treatment, error)
	List(ctx context.Context, tenantID string) ([]*model.Treatment, error)
	Update(ctx context.Context, tenantID string, treatment *model.Treatment) (*model.Treatment, error)

	// ListByRisk retrieves all treatments of a risk
	ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Treatment, error)
}
