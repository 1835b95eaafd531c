package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

func TestParseIndicatorDirection(t *testing.T) {
	d, err := types.ParseIndicatorDirection("Above")
	gt.NoError(t, err).Required()
	gt.Value(t, d).Equal(types.IndicatorDirectionAbove)

	d, err = types.ParseIndicatorDirection("below")
	gt.NoError(t, err).Required()
	gt.Value(t, d).Equal(types.IndicatorDirectionBelow)

	_, err = types.ParseIndicatorDirection("range")
	gt.Error(t, err)
}

func TestParseAssessmentMethod(t *testing.T) {
	m, err := types.ParseAssessmentMethod("")
	gt.NoError(t, err).Required()
	gt.Value(t, m).Equal(types.AssessmentMethodQualitative)

	m, err = types.ParseAssessmentMethod("quant")
	gt.NoError(t, err).Required()
	gt.Value(t, m).Equal(types.AssessmentMethodQuantitative)

	_, err = types.ParseAssessmentMethod("fuzzy")
	gt.Error(t, err)
}

func TestHeatColor_Rank(t *testing.T) {
	gt.Bool(t, types.HeatColorGreen.Rank() < types.HeatColorAmber.Rank()).True()
	gt.Bool(t, types.HeatColorAmber.Rank() < types.HeatColorRed.Rank()).True()
	gt.Value(t, types.HeatColor("blue").Rank()).Equal(0)
}

func TestLevel(t *testing.T) {
	for v := types.MinLevel; v <= types.MaxLevel; v++ {
		gt.Bool(t, types.ValidLevel(v)).True()
	}
	gt.Bool(t, types.ValidLevel(0)).False()
	gt.Bool(t, types.ValidLevel(6)).False()
	gt.Value(t, types.ClampLevel(-3)).Equal(1)
	gt.Value(t, types.ClampLevel(9)).Equal(5)
	gt.Value(t, types.ClampLevel(3)).Equal(3)
}
