// Package settings loads tenant risk settings from a TOML file and serves them per tenant.
package settings

import (
	"context"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
)

// Sentinel errors for settings files
var (
	ErrInvalidConfig     = goerr.New("invalid settings configuration")
	ErrDuplicateTenantID = goerr.New("duplicate tenant ID")
	ErrMissingTenantID   = goerr.New("tenant ID is required")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	TenantIDKey   = "tenant_id"
)

// File is the TOML layout of a settings file
type File struct {
	Default *TenantEntry  `toml:"default"`
	Tenants []TenantEntry `toml:"tenant"`
}

// TenantEntry is one [[tenant]] table, or the [default] table when ID is empty
type TenantEntry struct {
	ID       string        `toml:"id"`
	Appetite *float64      `toml:"appetite"`
	Heatmap  *HeatmapEntry `toml:"heatmap"`
}

// HeatmapEntry holds [tenant.heatmap] thresholds. Missing values take the defaults.
type HeatmapEntry struct {
	GreenMax *float64 `toml:"green_max"`
	AmberMax *float64 `toml:"amber_max"`
	RedMax   *float64 `toml:"red_max"`
}

// ToDomain converts the entry into typed settings with defaults filled in
func (e *TenantEntry) ToDomain() *model.TenantRiskSettings {
	s := model.DefaultTenantRiskSettings()
	if e == nil {
		return s
	}
	if e.Appetite != nil {
		appetite := *e.Appetite
		s.Appetite = &appetite
	}
	if e.Heatmap != nil {
		if e.Heatmap.GreenMax != nil {
			s.Heatmap.GreenMax = *e.Heatmap.GreenMax
		}
		if e.Heatmap.AmberMax != nil {
			s.Heatmap.AmberMax = *e.Heatmap.AmberMax
		}
		if e.Heatmap.RedMax != nil {
			s.Heatmap.RedMax = *e.Heatmap.RedMax
		}
	}
	return s
}

// Validate checks tenant IDs are present and unique and every entry is in range
func (f *File) Validate() error {
	if f.Default != nil {
		if err := f.Default.ToDomain().Validate(); err != nil {
			return goerr.Wrap(err, "invalid default settings")
		}
	}

	seen := make(map[string]bool)
	for i, t := range f.Tenants {
		if t.ID == "" {
			return goerr.Wrap(ErrMissingTenantID, "tenant entry has no id", goerr.V("index", i))
		}
		if seen[t.ID] {
			return goerr.Wrap(ErrDuplicateTenantID, "tenant listed twice", goerr.V(TenantIDKey, t.ID))
		}
		seen[t.ID] = true

		if err := t.ToDomain().Validate(); err != nil {
			return goerr.Wrap(err, "invalid tenant settings", goerr.V(TenantIDKey, t.ID))
		}
	}
	return nil
}

// Parse decodes and validates settings from TOML bytes
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML settings", goerr.V("error", err.Error()))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and validates a settings file
func Load(path string) (*File, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read settings file", goerr.V(ConfigPathKey, path))
	}

	f, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "settings validation failed", goerr.V(ConfigPathKey, path))
	}
	return f, nil
}

// Provider serves per-tenant settings decoded once at load time
type Provider struct {
	mu       sync.RWMutex
	fallback *model.TenantRiskSettings
	tenants  map[string]*model.TenantRiskSettings
}

var _ interfaces.SettingsProvider = &Provider{}

// NewProvider builds a provider from a validated file. A nil file serves defaults only.
func NewProvider(f *File) *Provider {
	p := &Provider{
		fallback: model.DefaultTenantRiskSettings(),
		tenants:  make(map[string]*model.TenantRiskSettings),
	}
	if f == nil {
		return p
	}
	if f.Default != nil {
		p.fallback = f.Default.ToDomain()
	}
	for i := range f.Tenants {
		p.tenants[f.Tenants[i].ID] = f.Tenants[i].ToDomain()
	}
	return p
}

// GetSettings returns a copy of the tenant settings, or the default settings for unknown tenants
func (p *Provider) GetSettings(ctx context.Context, tenantID string) (*model.TenantRiskSettings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.tenants[tenantID]
	if !ok {
		s = p.fallback
	}
	return copySettings(s), nil
}

// SetTenant replaces the settings of one tenant after validating them. Changes live in memory
// and are not written back to the settings file.
func (p *Provider) SetTenant(ctx context.Context, tenantID string, s *model.TenantRiskSettings) error {
	if err := s.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant settings", goerr.V(TenantIDKey, tenantID))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tenants[tenantID] = copySettings(s)
	return nil
}

// TenantIDs returns the tenants configured explicitly
func (p *Provider) TenantIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.tenants))
	for id := range p.tenants {
		ids = append(ids, id)
	}
	return ids
}

func copySettings(s *model.TenantRiskSettings) *model.TenantRiskSettings {
	c := *s
	if s.Appetite != nil {
		appetite := *s.Appetite
		c.Appetite = &appetite
	}
	return &c
}
