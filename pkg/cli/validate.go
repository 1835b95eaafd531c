package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/cli/config"
	"github.com/neonzero/OpenERM/pkg/service/riskcsv"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var settingsCfg config.Settings
	var csvPath string

	var flags []cli.Flag
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "csv",
		Usage:       "CSV file whose rows are checked without importing them",
		Destination: &csvPath,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the tenant risk settings file and optionally a risk CSV",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if settingsCfg.Path() == "" && csvPath == "" {
				return goerr.New("nothing to validate: set --settings and/or --csv")
			}

			// Step 1: Load and validate the settings file
			if settingsCfg.Path() != "" {
				f, err := settingsCfg.Load()
				if err != nil {
					return goerr.Wrap(err, "settings validation failed")
				}

				logger.Info("Settings validation passed",
					"path", settingsCfg.Path(),
					"tenant_count", len(f.Tenants),
					"has_default", f.Default != nil,
				)
				for _, tenant := range f.Tenants {
					s := tenant.ToDomain()
					logger.Info("Tenant validated",
						"id", tenant.ID,
						"appetite", s.Appetite,
						"heatmap", s.Heatmap,
					)
				}
			}

			// Step 2: If a CSV is given, check every row the way import would
			if csvPath == "" {
				return nil
			}

			data, err := os.ReadFile(csvPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read CSV file", goerr.V("path", csvPath))
			}

			result := riskcsv.Parse(string(data))
			rowErrors := result.Errors
			valid := len(result.Rows)

			if len(rowErrors) > 0 {
				for _, rowErr := range rowErrors {
					logger.Warn("Invalid CSV row", "line", rowErr.Line, "message", rowErr.Message)
				}
				return goerr.New("CSV validation found invalid rows",
					goerr.V("path", csvPath),
					goerr.V("invalid", len(rowErrors)),
					goerr.V("valid", valid),
				)
			}

			logger.Info("CSV validation passed", "path", csvPath, "rows", valid)
			return nil
		},
	}
}
