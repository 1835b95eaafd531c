package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/cli"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

const riskCSV = `title,description,inherentLikelihood,inherentImpact,residualLikelihood,residualImpact,keyRisk
Cloud outage,Primary region down,4,5,3,4,true
Supplier insolvency,Key vendor fails,2,3,,,false
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return cli.Run(context.Background(), append([]string{"openerm", "--log-output", "stderr"}, args...), "test")
}

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("valid settings", func(t *testing.T) {
		path := writeFile(t, "settings.toml", `
[default]
appetite = 12

[[tenant]]
id = "acme"
appetite = 9
[tenant.heatmap]
green_max = 4
amber_max = 10
red_max = 25
`)
		gt.NoError(t, run(t, "validate", "--settings", path))
	})

	t.Run("descending thresholds", func(t *testing.T) {
		path := writeFile(t, "settings.toml", `
[[tenant]]
id = "acme"
[tenant.heatmap]
green_max = 12
amber_max = 5
red_max = 25
`)
		gt.Value(t, run(t, "validate", "--settings", path)).NotNil()
	})

	t.Run("missing settings file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nonexistent.toml")
		gt.Value(t, run(t, "validate", "--settings", path)).NotNil()
	})

	t.Run("valid csv", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV)
		gt.NoError(t, run(t, "validate", "--csv", path))
	})

	t.Run("csv with invalid rows", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV+"Bad row,,9,1,,,\n")
		gt.Value(t, run(t, "validate", "--csv", path)).NotNil()
	})

	t.Run("nothing to validate", func(t *testing.T) {
		gt.Value(t, run(t, "validate")).NotNil()
	})
}

func TestRun_ImportCommand(t *testing.T) {
	t.Run("imports with memory backend", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV)
		gt.NoError(t, run(t, "import", "--tenant", "acme", "--file", path, "--repository-backend", "memory"))
	})

	t.Run("fail on error", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV+"Bad row,,9,1,,,\n")
		gt.NoError(t, run(t, "import", "--tenant", "acme", "--file", path))
		gt.Value(t, run(t, "import", "--tenant", "acme", "--file", path, "--fail-on-error")).NotNil()
	})

	t.Run("tenant is required", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV)
		gt.Value(t, run(t, "import", "--file", path)).NotNil()
	})

	t.Run("unknown backend", func(t *testing.T) {
		path := writeFile(t, "risks.csv", riskCSV)
		gt.Value(t, run(t, "import", "--tenant", "acme", "--file", path, "--repository-backend", "sqlite")).NotNil()
	})
}

func TestRun_ExportCommand(t *testing.T) {
	input := writeFile(t, "risks.csv", riskCSV)
	output := filepath.Join(t.TempDir(), "out", "export.csv")

	gt.NoError(t, run(t, "export", "--tenant", "acme", "--input", input, "--output", output)).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	gt.Array(t, lines).Length(3).Required()
	gt.String(t, lines[1]).Contains("Cloud outage")
	gt.String(t, lines[2]).Contains("Supplier insolvency")

	t.Run("invalid destination", func(t *testing.T) {
		gt.Value(t, run(t, "export", "--tenant", "acme", "--output", "gs://bucket-only")).NotNil()
	})
}

func TestRun_HeatmapCommand(t *testing.T) {
	input := writeFile(t, "risks.csv", riskCSV)
	gt.NoError(t, run(t, "heatmap", "--tenant", "acme", "--input", input, "--no-color"))
}

func TestRenderHeatmap(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })

	risks := []*model.Risk{
		{ID: "r1", Title: "Cloud outage", InherentLikelihood: 5, InherentImpact: 5, AppetiteBreached: true, KeyRisk: true},
		{ID: "r2", Title: "Phishing", InherentLikelihood: 2, InherentImpact: 2},
	}
	hm := model.BuildHeatmap(risks, model.DefaultHeatmapThresholds())

	var buf bytes.Buffer
	cli.RenderHeatmap(&buf, hm, 1)
	out := buf.String()

	gt.String(t, out).Contains("25 [1]")
	gt.String(t, out).Contains(" 4 [1]")
	gt.String(t, out).Contains("Total risks: 2  Appetite breaches: 1")
	gt.String(t, out).Contains("By color: red: 1  amber: 0  green: 1")
	gt.String(t, out).Contains("25  Cloud outage (key, breach)")
	gt.Bool(t, strings.Contains(out, "Phishing")).False()
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("test")
	gt.Array(t, cfg.Collections).Length(5).Required()
	for _, c := range cfg.Collections {
		gt.Bool(t, strings.HasPrefix(c.Name, "test_")).True()
		gt.Array(t, c.Indexes).Length(1)
	}
}
