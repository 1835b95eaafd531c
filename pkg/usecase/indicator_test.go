package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/usecase"
)

func createIndicator(t *testing.T, env *testEnv, riskID string, direction types.IndicatorDirection, threshold *float64) *model.Indicator {
	t.Helper()
	indicator, err := env.uc.Indicator.CreateIndicator(context.Background(), testTenantID, testActorID, riskID, usecase.IndicatorInput{
		Name:      "Failed logins per hour",
		Direction: direction,
		Threshold: threshold,
		Unit:      "count",
		Cadence:   "hourly",
	})
	gt.NoError(t, err).Required()
	return indicator
}

func TestIndicatorUseCase_CreateIndicator(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	risk := env.seedRisk(t, "Account takeover", 3, 4)

	indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, floatPtr(10))
	gt.Value(t, indicator.RiskID).Equal(risk.ID)
	gt.Bool(t, indicator.Breached).False()
	gt.Value(t, env.events.Last().Type).Equal(types.EventIndicatorCreated)

	tests := []struct {
		name    string
		riskID  string
		in      usecase.IndicatorInput
		wantErr error
	}{
		{
			name:    "short name",
			riskID:  risk.ID,
			in:      usecase.IndicatorInput{Name: "ab", Direction: types.IndicatorDirectionAbove},
			wantErr: usecase.ErrValidation,
		},
		{
			name:    "unknown direction",
			riskID:  risk.ID,
			in:      usecase.IndicatorInput{Name: "Latency", Direction: "sideways"},
			wantErr: usecase.ErrValidation,
		},
		{
			name:    "infinite threshold",
			riskID:  risk.ID,
			in:      usecase.IndicatorInput{Name: "Latency", Direction: types.IndicatorDirectionAbove, Threshold: floatPtr(math.Inf(1))},
			wantErr: usecase.ErrValidation,
		},
		{
			name:    "unknown risk",
			riskID:  "missing",
			in:      usecase.IndicatorInput{Name: "Latency", Direction: types.IndicatorDirectionAbove},
			wantErr: usecase.ErrRiskNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.Indicator.CreateIndicator(ctx, testTenantID, testActorID, tt.riskID, tt.in)
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestIndicatorUseCase_RecordIndicatorReading(t *testing.T) {
	ctx := context.Background()

	t.Run("reading above threshold breaches", func(t *testing.T) {
		env := newTestEnv(t, nil)
		risk := env.seedRisk(t, "Account takeover", 3, 4)
		indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, floatPtr(10))

		reading, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, 12, nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, reading.Breached).True()
		gt.Value(t, reading.RecordedAt).Equal(testNow)

		stored, err := env.repo.Indicator().Get(ctx, testTenantID, indicator.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Breached).True()
		gt.Value(t, *stored.LatestValue).Equal(12.0)
		gt.Value(t, *stored.LatestRecordedAt).Equal(testNow)

		ev := env.events.Last()
		gt.Value(t, ev.Type).Equal(types.EventIndicatorThresholdBreached)
		gt.Value(t, ev.EntityID).Equal(indicator.ID)
		gt.Value(t, ev.Diff["value"]).Equal(any(12.0))
	})

	t.Run("reading within threshold clears the breach", func(t *testing.T) {
		env := newTestEnv(t, nil)
		risk := env.seedRisk(t, "Account takeover", 3, 4)
		indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, floatPtr(10))

		_, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, 12, nil)
		gt.NoError(t, err).Required()
		reading, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, 10, nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, reading.Breached).False()

		stored, err := env.repo.Indicator().Get(ctx, testTenantID, indicator.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Breached).False()
		gt.Value(t, env.events.Last().Type).Equal(types.EventIndicatorReadingRecorded)
	})

	t.Run("below direction", func(t *testing.T) {
		env := newTestEnv(t, nil)
		risk := env.seedRisk(t, "Backup coverage", 2, 5)
		indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionBelow, floatPtr(95))

		reading, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, 90, nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, reading.Breached).True()
	})

	t.Run("no threshold never breaches", func(t *testing.T) {
		env := newTestEnv(t, nil)
		risk := env.seedRisk(t, "Backup coverage", 2, 5)
		indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, nil)

		reading, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, 1e9, nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, reading.Breached).False()
	})

	t.Run("non-finite values are rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)
		risk := env.seedRisk(t, "Account takeover", 3, 4)
		indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, floatPtr(10))

		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, v, nil)
			gt.Error(t, err).Is(usecase.ErrValidation)
		}

		readings, err := env.repo.Indicator().ListReadings(ctx, testTenantID, indicator.ID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, readings).Length(0)
	})

	t.Run("unknown indicator", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, "missing", 1, nil)
		gt.Error(t, err).Is(usecase.ErrIndicatorNotFound)
	})
}

func TestIndicatorUseCase_IndicatorTrend(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	risk := env.seedRisk(t, "Account takeover", 3, 4)
	indicator := createIndicator(t, env, risk.ID, types.IndicatorDirectionAbove, floatPtr(10))

	for _, r := range []struct {
		daysAgo int
		value   float64
	}{
		{daysAgo: 1, value: 3},
		{daysAgo: 120, value: 1},
		{daysAgo: 10, value: 2},
	} {
		at := testNow.AddDate(0, 0, -r.daysAgo)
		_, err := env.uc.Indicator.RecordIndicatorReading(ctx, testTenantID, testActorID, indicator.ID, r.value, &at)
		gt.NoError(t, err).Required()
	}

	readings, err := env.uc.Indicator.IndicatorTrend(ctx, testTenantID, indicator.ID, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, readings).Length(2)
	gt.Value(t, readings[0].Value).Equal(2.0)
	gt.Value(t, readings[1].Value).Equal(3.0)

	readings, err = env.uc.Indicator.IndicatorTrend(ctx, testTenantID, indicator.ID, 365)
	gt.NoError(t, err).Required()
	gt.Array(t, readings).Length(3)

	_, err = env.uc.Indicator.IndicatorTrend(ctx, testTenantID, indicator.ID, 366)
	gt.Error(t, err).Is(usecase.ErrValidation)

	_, err = env.uc.Indicator.IndicatorTrend(ctx, testTenantID, "missing", 30)
	gt.Error(t, err).Is(usecase.ErrIndicatorNotFound)
}
