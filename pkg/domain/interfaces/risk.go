package interfaces

import (
	"context"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// RiskRepository defines the interface for Risk data access. Every operation is scoped to a tenant.
type RiskRepository interface {
	// Create creates a new risk with auto-generated ID
	Create(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, tenantID, id string) (*model.Risk, error)

	// List retrieves all risks of the tenant
	List(ctx context.Context, tenantID string) ([]*model.Risk, error)

	// Update replaces an existing risk
	Update(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error)

	// UpdateResidual writes only the residual fields of a risk
	UpdateResidual(ctx context.Context, tenantID, id string, update model.ResidualUpdate) (*model.Risk, error)
}

// OwnerRepository resolves tenant users
type OwnerRepository interface {
	// Put creates or replaces an owner
	Put(ctx context.Context, tenantID string, owner *model.Owner) error

	// FindByEmail returns the owner with the given e-mail (case-insensitive), or nil when absent
	FindByEmail(ctx context.Context, tenantID, email string) (*model.Owner, error)
}
