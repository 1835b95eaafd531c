package interfaces

import (
	"context"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// SettingsProvider resolves the risk settings of a tenant
type SettingsProvider interface {
	GetSettings(ctx context.Context, tenantID string) (*model.TenantRiskSettings, error)
	// SetTenant validates and replaces the settings of one tenant
	SetTenant(ctx context.Context, tenantID string, s *model.TenantRiskSettings) error
}
