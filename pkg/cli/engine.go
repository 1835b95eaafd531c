package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/cli/config"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/usecase"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// engineFlags are shared by every command that runs use cases against a repository
type engineFlags struct {
	repo     config.Repository
	settings config.Settings
	tenantID string
	actorID  string
}

func (x *engineFlags) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant",
			Aliases:     []string{"t"},
			Usage:       "Tenant ID",
			Required:    true,
			Sources:     cli.EnvVars("OPENERM_TENANT"),
			Destination: &x.tenantID,
		},
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "Actor ID recorded on emitted events",
			Value:       "cli",
			Sources:     cli.EnvVars("OPENERM_ACTOR"),
			Destination: &x.actorID,
		},
	}
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.settings.Flags()...)
	return flags
}

// setup opens the repository and wires use cases. The caller closes the repository.
func (x *engineFlags) setup(ctx context.Context, sinks ...interfaces.EventSink) (interfaces.Repository, *usecase.UseCases, error) {
	provider, err := x.settings.Configure()
	if err != nil {
		return nil, nil, err
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	sinks = append([]interfaces.EventSink{event.NewLogSink()}, sinks...)
	uc := usecase.New(repo,
		usecase.WithSettings(provider),
		usecase.WithEventSink(event.NewFanout(sinks...)),
	)
	return repo, uc, nil
}

// seed imports a CSV file before the command runs. The memory backend starts empty on every
// run, so this is how one-shot commands get data to work on.
func seed(ctx context.Context, uc *usecase.UseCases, tenantID, actorID, path string) (*model.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV file", goerr.V("path", path))
	}

	result, err := uc.Import.ImportRisks(ctx, tenantID, actorID, string(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to import risks", goerr.V("path", path))
	}

	logging.From(ctx).Info("Imported risks",
		"tenant_id", tenantID,
		"path", path,
		"imported", result.Imported,
		"failed", len(result.Errors),
	)
	return result, nil
}

func closeRepository(repo interfaces.Repository) {
	if err := repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}
