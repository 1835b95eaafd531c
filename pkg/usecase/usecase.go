package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/service/settings"
)

type UseCases struct {
	repo     interfaces.Repository
	settings interfaces.SettingsProvider
	sink     interfaces.EventSink
	clock    func() time.Time

	Risk       *RiskUseCase
	Assessment *AssessmentUseCase
	Treatment  *TreatmentUseCase
	Indicator  *IndicatorUseCase
	Heatmap    *HeatmapUseCase
	Import     *ImportUseCase
	Export     *ExportUseCase
}

type Option func(*UseCases)

// WithSettings sets the tenant settings provider. Defaults apply to every tenant when unset.
func WithSettings(p interfaces.SettingsProvider) Option {
	return func(uc *UseCases) {
		uc.settings = p
	}
}

// WithEventSink sets where domain events go. Events are logged when unset.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

// WithClock replaces time.Now
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		settings: settings.NewProvider(nil),
		sink:     event.NewLogSink(),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	deps := &engine{repo: uc.repo, settings: uc.settings, sink: uc.sink, clock: uc.clock}
	uc.Risk = &RiskUseCase{engine: deps}
	uc.Assessment = &AssessmentUseCase{engine: deps}
	uc.Treatment = &TreatmentUseCase{engine: deps}
	uc.Indicator = &IndicatorUseCase{engine: deps}
	uc.Heatmap = &HeatmapUseCase{engine: deps}
	uc.Import = &ImportUseCase{engine: deps}
	uc.Export = &ExportUseCase{engine: deps}

	return uc
}

// engine carries the collaborators shared by every use case
type engine struct {
	repo     interfaces.Repository
	settings interfaces.SettingsProvider
	sink     interfaces.EventSink
	clock    func() time.Time
}

func (e *engine) now() time.Time {
	return e.clock().UTC()
}

func (e *engine) tenantSettings(ctx context.Context, tenantID string) (*model.TenantRiskSettings, error) {
	s, err := e.settings.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get tenant settings", goerr.V(TenantIDKey, tenantID))
	}
	if s == nil {
		return model.DefaultTenantRiskSettings(), nil
	}
	return s, nil
}

func (e *engine) getRisk(ctx context.Context, tenantID, riskID string) (*model.Risk, error) {
	risk, err := e.repo.Risk().Get(ctx, tenantID, riskID)
	if err != nil {
		return nil, notFoundOr(err, ErrRiskNotFound, "risk not found", RiskIDKey, riskID)
	}
	return risk, nil
}

func (e *engine) emit(ctx context.Context, ev *model.Event) {
	if e.sink == nil {
		return
	}
	e.sink.Record(ctx, ev)
}
