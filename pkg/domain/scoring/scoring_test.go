package scoring_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/scoring"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestResidualScore(t *testing.T) {
	for l := 1; l <= 5; l++ {
		for i := 1; i <= 5; i++ {
			score := scoring.ResidualScore(l, i)
			gt.Value(t, score).Equal(l * i)
			gt.Bool(t, score >= 1 && score <= 25).True()
		}
	}
}

func TestClassify(t *testing.T) {
	th := model.DefaultHeatmapThresholds()
	gt.Value(t, scoring.Classify(5, th)).Equal(types.HeatColorGreen)
	gt.Value(t, scoring.Classify(12, th)).Equal(types.HeatColorAmber)
	gt.Value(t, scoring.Classify(20, th)).Equal(types.HeatColorRed)

	t.Run("monotonic in score", func(t *testing.T) {
		prev := 0
		for s := 0.0; s <= 25; s += 0.5 {
			rank := scoring.Classify(s, th).Rank()
			gt.Bool(t, rank >= prev).True()
			prev = rank
		}
	})
}

func TestAppetiteBreached(t *testing.T) {
	testCases := []struct {
		name     string
		score    int
		appetite *float64
		want     bool
	}{
		{name: "no appetite", score: 25, appetite: nil, want: false},
		{name: "above", score: 6, appetite: floatPtr(5), want: true},
		{name: "equal", score: 5, appetite: floatPtr(5), want: false},
		{name: "below", score: 4, appetite: floatPtr(5), want: false},
		{name: "fractional", score: 10, appetite: floatPtr(9.5), want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, scoring.AppetiteBreached(tc.score, tc.appetite)).Equal(tc.want)
		})
	}
}

func TestResolveEffectiveAppetite(t *testing.T) {
	gt.Value(t, *scoring.ResolveEffectiveAppetite(floatPtr(3), floatPtr(5), floatPtr(9))).Equal(3.0)
	gt.Value(t, *scoring.ResolveEffectiveAppetite(nil, floatPtr(5), floatPtr(9))).Equal(5.0)
	gt.Value(t, *scoring.ResolveEffectiveAppetite(nil, nil, floatPtr(9))).Equal(9.0)
	gt.Value(t, scoring.ResolveEffectiveAppetite(nil, nil, nil)).Nil()

	t.Run("result does not alias inputs", func(t *testing.T) {
		tenant := floatPtr(9)
		got := scoring.ResolveEffectiveAppetite(nil, nil, tenant)
		*got = 1
		gt.Value(t, *tenant).Equal(9.0)
	})
}

func TestResolveEffectiveResidual(t *testing.T) {
	gt.Value(t, scoring.ResolveEffectiveResidual(intPtr(2), intPtr(3), 4)).Equal(2)
	gt.Value(t, scoring.ResolveEffectiveResidual(nil, intPtr(3), 4)).Equal(3)
	gt.Value(t, scoring.ResolveEffectiveResidual(nil, nil, 4)).Equal(4)
}

func TestResolveImportResidual(t *testing.T) {
	gt.Value(t, scoring.ResolveImportResidual(intPtr(2), 4)).Equal(2)
	gt.Value(t, scoring.ResolveImportResidual(nil, 4)).Equal(4)
}

func TestEvaluate(t *testing.T) {
	u := scoring.Evaluate(2, 3, floatPtr(5))
	gt.Value(t, u.Score).Equal(6)
	gt.Bool(t, u.AppetiteBreached).True()

	u = scoring.Evaluate(2, 2, nil)
	gt.Value(t, u.Score).Equal(4)
	gt.Bool(t, u.AppetiteBreached).False()
	gt.Value(t, u.AppetiteThreshold).Nil()
}

func TestEvaluateIndicator(t *testing.T) {
	testCases := []struct {
		name      string
		direction types.IndicatorDirection
		value     float64
		threshold *float64
		want      bool
	}{
		{name: "above breached", direction: types.IndicatorDirectionAbove, value: 6, threshold: floatPtr(5), want: true},
		{name: "above equal", direction: types.IndicatorDirectionAbove, value: 5, threshold: floatPtr(5), want: false},
		{name: "above under", direction: types.IndicatorDirectionAbove, value: 4, threshold: floatPtr(5), want: false},
		{name: "below breached", direction: types.IndicatorDirectionBelow, value: 3, threshold: floatPtr(5), want: true},
		{name: "below equal", direction: types.IndicatorDirectionBelow, value: 5, threshold: floatPtr(5), want: false},
		{name: "no threshold", direction: types.IndicatorDirectionAbove, value: 1e9, threshold: nil, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, scoring.EvaluateIndicator(tc.direction, tc.value, tc.threshold)).Equal(tc.want)
		})
	}
}
