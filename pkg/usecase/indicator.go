package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/scoring"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

const (
	minIndicatorNameLength = 3

	DefaultTrendDays = 90
	MaxTrendDays     = 365
)

type IndicatorUseCase struct {
	*engine
}

// IndicatorInput describes a new key risk indicator
type IndicatorInput struct {
	Name      string
	Direction types.IndicatorDirection
	Threshold *float64
	Unit      string
	Cadence   string
}

func (uc *IndicatorUseCase) CreateIndicator(ctx context.Context, tenantID, actorID, riskID string, in IndicatorInput) (*model.Indicator, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < minIndicatorNameLength {
		return nil, validationError("indicator name must be at least 3 characters", "name", in.Name)
	}
	if !in.Direction.IsValid() {
		return nil, validationError("direction must be above or below", "direction", in.Direction)
	}
	if in.Threshold != nil && !isFinite(*in.Threshold) {
		return nil, validationError("threshold must be a finite number", "threshold", *in.Threshold)
	}

	risk, err := uc.getRisk(ctx, tenantID, riskID)
	if err != nil {
		return nil, err
	}

	created, err := uc.repo.Indicator().Create(ctx, tenantID, &model.Indicator{
		RiskID:    risk.ID,
		Name:      name,
		Direction: in.Direction,
		Threshold: in.Threshold,
		Unit:      in.Unit,
		Cadence:   in.Cadence,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create indicator", goerr.V(RiskIDKey, risk.ID))
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityIndicator,
		EntityID: created.ID,
		Type:     types.EventIndicatorCreated,
		Diff: map[string]any{
			"riskId":    risk.ID,
			"direction": created.Direction.String(),
		},
	})

	return created, nil
}

func (uc *IndicatorUseCase) getIndicator(ctx context.Context, tenantID, indicatorID string) (*model.Indicator, error) {
	indicator, err := uc.repo.Indicator().Get(ctx, tenantID, indicatorID)
	if err != nil {
		return nil, notFoundOr(err, ErrIndicatorNotFound, "indicator not found", IndicatorIDKey, indicatorID)
	}
	return indicator, nil
}

// RecordIndicatorReading appends a reading and refreshes the indicator's latest value and
// breach flag. recordedAt defaults to now.
func (uc *IndicatorUseCase) RecordIndicatorReading(ctx context.Context, tenantID, actorID, indicatorID string, value float64, recordedAt *time.Time) (*model.IndicatorReading, error) {
	if !isFinite(value) {
		return nil, validationError("value must be a finite number", "value", value)
	}

	indicator, err := uc.getIndicator(ctx, tenantID, indicatorID)
	if err != nil {
		return nil, err
	}

	at := uc.now()
	if recordedAt != nil {
		at = recordedAt.UTC()
	}
	breached := scoring.EvaluateIndicator(indicator.Direction, value, indicator.Threshold)

	reading, err := uc.repo.Indicator().AddReading(ctx, tenantID, &model.IndicatorReading{
		IndicatorID: indicator.ID,
		Value:       value,
		RecordedAt:  at,
		Breached:    breached,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to add indicator reading", goerr.V(IndicatorIDKey, indicatorID))
	}

	indicator.LatestValue = &value
	indicator.LatestRecordedAt = &at
	indicator.Breached = breached
	if _, err := uc.repo.Indicator().Update(ctx, tenantID, indicator); err != nil {
		return nil, goerr.Wrap(err, "failed to update indicator", goerr.V(IndicatorIDKey, indicatorID))
	}

	eventType := types.EventIndicatorReadingRecorded
	if breached {
		eventType = types.EventIndicatorThresholdBreached
	}
	diff := map[string]any{
		"riskId":   indicator.RiskID,
		"value":    value,
		"breached": breached,
	}
	if indicator.Threshold != nil {
		diff["threshold"] = *indicator.Threshold
	}

	uc.emit(ctx, &model.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Entity:   types.EntityIndicator,
		EntityID: indicator.ID,
		Type:     eventType,
		Diff:     diff,
	})

	return reading, nil
}

// IndicatorTrend returns readings of the last days days, oldest first. Zero days means 90.
func (uc *IndicatorUseCase) IndicatorTrend(ctx context.Context, tenantID, indicatorID string, days int) ([]*model.IndicatorReading, error) {
	if days == 0 {
		days = DefaultTrendDays
	}
	if days < 1 || days > MaxTrendDays {
		return nil, validationError("days must be between 1 and 365", "days", days)
	}

	if _, err := uc.getIndicator(ctx, tenantID, indicatorID); err != nil {
		return nil, err
	}

	since := uc.now().AddDate(0, 0, -days)
	readings, err := uc.repo.Indicator().ListReadings(ctx, tenantID, indicatorID, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list indicator readings", goerr.V(IndicatorIDKey, indicatorID))
	}
	return readings, nil
}

// ListIndicators returns the indicators of a risk
func (uc *IndicatorUseCase) ListIndicators(ctx context.Context, tenantID, riskID string) ([]*model.Indicator, error) {
	if _, err := uc.getRisk(ctx, tenantID, riskID); err != nil {
		return nil, err
	}
	indicators, err := uc.repo.Indicator().ListByRisk(ctx, tenantID, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list indicators", goerr.V(RiskIDKey, riskID))
	}
	return indicators, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
