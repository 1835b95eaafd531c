package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var engine engineFlags
	var file string
	var failOnError bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "CSV file to import",
			Required:    true,
			Destination: &file,
		},
		&cli.BoolFlag{
			Name:        "fail-on-error",
			Usage:       "Exit with an error when any row is rejected",
			Destination: &failOnError,
		},
	}
	flags = append(flags, engine.Flags()...)

	return &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import risks from a CSV file and print the {imported, errors} summary",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, uc, err := engine.setup(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			result, err := seed(ctx, uc, engine.tenantID, engine.actorID, file)
			if err != nil {
				return err
			}

			if err := writeImportResult(ctx, c.Root().Writer, result); err != nil {
				return err
			}

			if failOnError && len(result.Errors) > 0 {
				return goerr.New("some rows were rejected", goerr.V("failed", len(result.Errors)))
			}
			return nil
		},
	}
}

func writeImportResult(ctx context.Context, w io.Writer, result *model.ImportResult) error {
	if w == nil {
		w = os.Stdout
	}
	if result.Errors == nil {
		result.Errors = []model.RowError{}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal import result")
	}
	safe.Write(ctx, w, append(data, '\n'))
	return nil
}
