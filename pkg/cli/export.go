package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/cli/config"
	"github.com/neonzero/OpenERM/pkg/service/storage"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var engine engineFlags
	var storageCfg config.Storage
	var output string
	var input string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination: file path, gs://bucket/object or - for stdout",
			Value:       "-",
			Sources:     cli.EnvVars("OPENERM_EXPORT_OUTPUT"),
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "input",
			Usage:       "CSV file imported before exporting",
			Destination: &input,
		},
	}
	flags = append(flags, engine.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export the tenant's risk register as CSV",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dest, err := storage.ParseDestination(output)
			if err != nil {
				return err
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

			text, err := uc.Export.Export(ctx, engine.tenantID)
			if err != nil {
				return goerr.Wrap(err, "failed to export risks", goerr.V("tenant_id", engine.tenantID))
			}

			writer := storageCfg.Configure(c.Root().Writer)
			if err := writer.Write(ctx, dest, []byte(text), "text/csv"); err != nil {
				return err
			}

			if dest.Kind != storage.DestinationStdout {
				logging.Default().Info("Exported risks", "tenant_id", engine.tenantID, "destination", dest.String())
			}
			return nil
		},
	}
}
