package config

import (
	"io"

	"github.com/neonzero/OpenERM/pkg/service/storage"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for export destinations
type Storage struct {
	credentialsFile string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcs-credentials-file",
			Usage:       "Service account credentials for gs:// destinations (default: application default credentials)",
			Category:    "Storage",
			Sources:     cli.EnvVars("OPENERM_GCS_CREDENTIALS_FILE"),
			Destination: &x.credentialsFile,
		},
	}
}

// Configure returns a writer for local files and Cloud Storage objects. "-" goes to stdout when
// it is not nil.
func (x *Storage) Configure(stdout io.Writer) *storage.Writer {
	var opts []storage.Option
	if stdout != nil {
		opts = append(opts, storage.WithStdout(stdout))
	}
	if x.credentialsFile != "" {
		opts = append(opts, storage.WithCredentialsFile(x.credentialsFile))
	}
	return storage.NewWriter(opts...)
}
