package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdHeatmap() *cli.Command {
	var engine engineFlags
	var input string
	var top int
	var noColor bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Usage:       "CSV file imported before building the heatmap",
			Destination: &input,
		},
		&cli.IntFlag{
			Name:        "top",
			Usage:       "Number of top risks listed under the matrix",
			Value:       5,
			Destination: &top,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &noColor,
		},
	}
	flags = append(flags, engine.Flags()...)

	return &cli.Command{
		Name:  "heatmap",
		Usage: "Print the tenant's 5x5 residual risk heatmap",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if noColor {
				color.NoColor = true
			}

			repo, uc, err := engine.setup(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			if input != "" {
				if _, err := seed(ctx, uc, engine.tenantID, engine.actorID, input); err != nil {
					return err
				}
			}

			hm, err := uc.Heatmap.Build(ctx, engine.tenantID)
			if err != nil {
				return goerr.Wrap(err, "failed to build heatmap", goerr.V("tenant_id", engine.tenantID))
			}

			renderHeatmap(c.Root().Writer, hm, top)
			return nil
		},
	}
}

var heatColors = map[types.HeatColor]*color.Color{
	types.HeatColorGreen: color.New(color.BgGreen, color.FgBlack),
	types.HeatColorAmber: color.New(color.BgYellow, color.FgBlack),
	types.HeatColorRed:   color.New(color.BgRed, color.FgWhite, color.Bold),
}

// renderHeatmap prints likelihood rows from 5 down to 1 against impact columns 1 to 5.
// Each cell shows its score and, when not empty, the number of risks in brackets.
func renderHeatmap(w io.Writer, hm *model.Heatmap, top int) {
	header := color.New(color.Bold)

	var b strings.Builder
	b.WriteString(header.Sprint("L\\I"))
	for i := types.MinLevel; i <= types.MaxLevel; i++ {
		b.WriteString(" " + header.Sprintf("%-8d", i))
	}
	b.WriteString("\n")

	for l := types.MaxLevel; l >= types.MinLevel; l-- {
		b.WriteString(header.Sprintf("%3d", l))
		for i := types.MinLevel; i <= types.MaxLevel; i++ {
			cell := hm.Cell(l, i)
			label := fmt.Sprintf("%2d", cell.Score)
			if cell.Count > 0 {
				label += fmt.Sprintf(" [%d]", cell.Count)
			}
			label = fmt.Sprintf(" %-7s", label)

			if c, ok := heatColors[cell.Color]; ok {
				label = c.Sprint(label)
			}
			b.WriteString(" " + label)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTotal risks: %d  Appetite breaches: %d\n", hm.Totals.TotalRisks, hm.Totals.AppetiteBreaches)
	b.WriteString(colorSummary(hm) + "\n")

	if risks := hm.TopRisks(top); len(risks) > 0 {
		b.WriteString("\nTop risks:\n")
		for _, r := range risks {
			var marks []string
			if r.KeyRisk {
				marks = append(marks, "key")
			}
			if r.AppetiteBreached {
				marks = append(marks, color.RedString("breach"))
			}
			line := fmt.Sprintf("  %2d  %s", r.ResidualScore, r.Title)
			if len(marks) > 0 {
				line += " (" + strings.Join(marks, ", ") + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	fmt.Fprint(w, b.String())
}

// colorSummary lists the risk count of every color, most severe first
func colorSummary(hm *model.Heatmap) string {
	colors := make([]types.HeatColor, 0, len(heatColors))
	for c := range heatColors {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		return colors[i].Rank() > colors[j].Rank()
	})

	counts := hm.CountByColor()
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = heatColors[c].Sprintf("%s: %d", c, counts[c])
	}
	return "By color: " + strings.Join(parts, "  ")
}
