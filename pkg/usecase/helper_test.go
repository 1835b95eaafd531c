package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/repository/memory"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/service/settings"
	"github.com/neonzero/OpenERM/pkg/usecase"
)

const (
	testTenantID = "acme"
	testActorID  = "U001"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

type testEnv struct {
	repo     *memory.Memory
	events   *event.Recorder
	settings *settings.Provider
	uc       *usecase.UseCases
}

// newTestEnv wires use cases over the memory backend. A nil appetite leaves the tenant without one.
func newTestEnv(t *testing.T, appetite *float64) *testEnv {
	t.Helper()
	return newTestEnvWithSettings(t, &settings.File{
		Tenants: []settings.TenantEntry{{ID: testTenantID, Appetite: appetite}},
	})
}

func newTestEnvWithSettings(t *testing.T, f *settings.File) *testEnv {
	t.Helper()
	gt.NoError(t, f.Validate()).Required()

	env := &testEnv{
		repo:     memory.New(),
		events:   event.NewRecorder(),
		settings: settings.NewProvider(f),
	}
	env.uc = usecase.New(env.repo,
		usecase.WithSettings(env.settings),
		usecase.WithEventSink(env.events),
		usecase.WithClock(func() time.Time { return testNow }),
	)
	return env
}

// seedRisk stores a risk directly, bypassing scoring, so residual fields stay unset
func (e *testEnv) seedRisk(t *testing.T, title string, likelihood, impact int) *model.Risk {
	t.Helper()
	risk, err := e.repo.Risk().Create(context.Background(), testTenantID, &model.Risk{
		Title:              title,
		InherentLikelihood: likelihood,
		InherentImpact:     impact,
		Status:             model.DefaultRiskStatus,
	})
	gt.NoError(t, err).Required()
	return risk
}

func (e *testEnv) createRisk(t *testing.T, in usecase.RiskInput) *model.Risk {
	t.Helper()
	risk, err := e.uc.Risk.CreateRisk(context.Background(), testTenantID, testActorID, in)
	gt.NoError(t, err).Required()
	return risk
}
