package interfaces

import (
	"context"
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// IndicatorRepository stores key risk indicators and their readings
type IndicatorRepository interface {
	Create(ctx context.Context, tenantID string, indicator *model.Indicator) (*model.Indicator, error)
	Get(ctx context.Context, tenantID, id string) (*model.Indicator, error)
	Update(ctx context.Context, tenantID string, indicator *model.Indicator) (*model.Indicator, error)
	ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Indicator, error)

	// AddReading appends an immutable reading with auto-generated ID
	AddReading(ctx context.Context, tenantID string, reading *model.IndicatorReading) (*model.IndicatorReading, error)

	// ListReadings retrieves readings recorded at or after since, oldest first
	ListReadings(ctx context.Context, tenantID, indicatorID string, since time.Time) ([]*model.IndicatorReading, error)
}
