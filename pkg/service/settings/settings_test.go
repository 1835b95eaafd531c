package settings_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/service/settings"
)

const validSettings = `
[default]
appetite = 12

[[tenant]]
id = "acme"
appetite = 9
  [tenant.heatmap]
  green_max = 4
  amber_max = 10
  red_max = 25

[[tenant]]
id = "globex"
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644)).Required()
	return path
}

func TestLoad(t *testing.T) {
	f, err := settings.Load(writeSettings(t, validSettings))
	gt.NoError(t, err).Required()
	gt.Array(t, f.Tenants).Length(2)

	p := settings.NewProvider(f)
	ctx := context.Background()

	t.Run("configured tenant", func(t *testing.T) {
		s, err := p.GetSettings(ctx, "acme")
		gt.NoError(t, err).Required()
		gt.Value(t, *s.Appetite).Equal(9.0)
		gt.Value(t, s.Heatmap).Equal(model.HeatmapThresholds{GreenMax: 4, AmberMax: 10, RedMax: 25})
	})

	t.Run("tenant without heatmap gets defaults", func(t *testing.T) {
		s, err := p.GetSettings(ctx, "globex")
		gt.NoError(t, err).Required()
		gt.Value(t, s.Appetite).Nil()
		gt.Value(t, s.Heatmap).Equal(model.DefaultHeatmapThresholds())
	})

	t.Run("unknown tenant gets default table", func(t *testing.T) {
		s, err := p.GetSettings(ctx, "initech")
		gt.NoError(t, err).Required()
		gt.Value(t, *s.Appetite).Equal(12.0)
	})

	t.Run("returned settings are copies", func(t *testing.T) {
		s, err := p.GetSettings(ctx, "acme")
		gt.NoError(t, err).Required()
		*s.Appetite = 1

		again, err := p.GetSettings(ctx, "acme")
		gt.NoError(t, err).Required()
		gt.Value(t, *again.Appetite).Equal(9.0)
	})

	ids := p.TenantIDs()
	sort.Strings(ids)
	gt.Array(t, ids).Equal([]string{"acme", "globex"})
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "broken toml",
			content: "[[tenant]\nid=",
			wantErr: settings.ErrInvalidConfig,
		},
		{
			name:    "missing id",
			content: "[[tenant]]\nappetite = 5\n",
			wantErr: settings.ErrMissingTenantID,
		},
		{
			name:    "duplicate id",
			content: "[[tenant]]\nid = \"a\"\n[[tenant]]\nid = \"a\"\n",
			wantErr: settings.ErrDuplicateTenantID,
		},
		{
			name:    "appetite out of range",
			content: "[[tenant]]\nid = \"a\"\nappetite = 30\n",
			wantErr: model.ErrInvalidSettings,
		},
		{
			name:    "appetite nan",
			content: "[[tenant]]\nid = \"a\"\nappetite = nan\n",
			wantErr: model.ErrInvalidSettings,
		},
		{
			name:    "thresholds not ascending",
			content: "[[tenant]]\nid = \"a\"\n[tenant.heatmap]\ngreen_max = 15\n",
			wantErr: model.ErrInvalidSettings,
		},
		{
			name:    "invalid default",
			content: "[default]\nappetite = 0\n",
			wantErr: model.ErrInvalidSettings,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := settings.Load(writeSettings(t, tc.content))
			gt.Error(t, err).Is(tc.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := settings.Load(filepath.Join(t.TempDir(), "none.toml"))
		gt.Value(t, err).NotNil()
	})
}

func TestProvider_Defaults(t *testing.T) {
	p := settings.NewProvider(nil)
	s, err := p.GetSettings(context.Background(), "any")
	gt.NoError(t, err).Required()
	gt.Value(t, s.Appetite).Nil()
	gt.Value(t, s.Heatmap).Equal(model.DefaultHeatmapThresholds())
}

func TestProvider_SetTenant(t *testing.T) {
	p := settings.NewProvider(nil)
	appetite := 6.0

	gt.NoError(t, p.SetTenant(context.Background(), "acme", &model.TenantRiskSettings{Appetite: &appetite, Heatmap: model.DefaultHeatmapThresholds()})).Required()
	s, err := p.GetSettings(context.Background(), "acme")
	gt.NoError(t, err).Required()
	gt.Value(t, *s.Appetite).Equal(6.0)

	bad := 99.0
	err = p.SetTenant(context.Background(), "acme", &model.TenantRiskSettings{Appetite: &bad, Heatmap: model.DefaultHeatmapThresholds()})
	gt.Error(t, err).Is(model.ErrInvalidSettings)
}
