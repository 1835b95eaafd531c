package interfaces

import (
	"context"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// AssessmentRepository stores immutable assessments
type AssessmentRepository interface {
	// Create stores a new assessment with auto-generated ID
	Create(ctx context.Context, tenantID string, assessment *model.Assessment) (*model.Assessment, error)

	// ListByRisk retrieves assessments of a risk, newest first
	ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Assessment, error)
}
