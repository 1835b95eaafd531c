package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/service/settings"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Settings holds the path of the tenant risk settings file
type Settings struct {
	path string
}

func (x *Settings) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "settings",
			Aliases:     []string{"c"},
			Usage:       "Path to tenant risk settings TOML file",
			Category:    "Settings",
			Sources:     cli.EnvVars("OPENERM_SETTINGS"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured settings file path
func (x *Settings) Path() string {
	return x.path
}

// Load reads and validates the settings file. Without a path every tenant gets the defaults.
func (x *Settings) Load() (*settings.File, error) {
	if x.path == "" {
		return &settings.File{}, nil
	}

	f, err := settings.Load(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load settings file", goerr.V(settings.ConfigPathKey, x.path))
	}
	return f, nil
}

// Configure loads the settings file and returns a provider serving it
func (x *Settings) Configure() (*settings.Provider, error) {
	f, err := x.Load()
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Loaded tenant risk settings",
		"path", x.path,
		"tenants", len(f.Tenants),
		"has_default", f.Default != nil,
	)
	return settings.NewProvider(f), nil
}
