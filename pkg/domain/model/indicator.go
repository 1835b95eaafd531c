package model

import (
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// Indicator is a key risk indicator (KRI) linked to a Risk
type Indicator struct {
	ID               string
	TenantID         string
	RiskID           string
	Name             string
	Direction        types.IndicatorDirection
	Threshold        *float64
	Unit             string
	Cadence          string
	LatestValue      *float64
	LatestRecordedAt *time.Time
	Breached         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IndicatorReading is an append-only, time-stamped value of an indicator
type IndicatorReading struct {
	ID          string
	IndicatorID string
	Value       float64
	RecordedAt  time.Time
	Breached    bool
}
