// Package storage writes export payloads to stdout, a local file or a Cloud Storage object.
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/utils/safe"
	"google.golang.org/api/option"
)

// ErrInvalidDestination is returned for destinations that cannot be parsed
var ErrInvalidDestination = goerr.New("invalid export destination")

// DestinationKind tells where a payload goes
type DestinationKind string

const (
	DestinationStdout DestinationKind = "stdout"
	DestinationFile   DestinationKind = "file"
	DestinationGCS    DestinationKind = "gcs"
)

const gcsScheme = "gs://"

// Destination is a parsed export target
type Destination struct {
	Kind   DestinationKind
	Path   string
	Bucket string
	Object string
}

func (d Destination) String() string {
	switch d.Kind {
	case DestinationStdout:
		return "-"
	case DestinationGCS:
		return gcsScheme + d.Bucket + "/" + d.Object
	default:
		return d.Path
	}
}

// ParseDestination accepts "-" for stdout, "gs://bucket/object" or a file path
func ParseDestination(dest string) (Destination, error) {
	dest = strings.TrimSpace(dest)
	switch {
	case dest == "" || dest == "-":
		return Destination{Kind: DestinationStdout}, nil

	case strings.HasPrefix(dest, gcsScheme):
		bucket, object, ok := strings.Cut(strings.TrimPrefix(dest, gcsScheme), "/")
		if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
			return Destination{}, goerr.Wrap(ErrInvalidDestination, "gs:// destination needs bucket and object", goerr.V("destination", dest))
		}
		return Destination{Kind: DestinationGCS, Bucket: bucket, Object: object}, nil

	default:
		return Destination{Kind: DestinationFile, Path: filepath.Clean(dest)}, nil
	}
}

// Writer delivers payloads to destinations
type Writer struct {
	stdout          io.Writer
	credentialsFile string
}

// Option configures Writer
type Option func(*Writer)

// WithStdout replaces the writer used for "-"
func WithStdout(w io.Writer) Option {
	return func(x *Writer) {
		x.stdout = w
	}
}

// WithCredentialsFile uses a service account key for Cloud Storage
func WithCredentialsFile(path string) Option {
	return func(x *Writer) {
		x.credentialsFile = path
	}
}

func NewWriter(opts ...Option) *Writer {
	w := &Writer{stdout: os.Stdout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores data at dest with the given content type
func (w *Writer) Write(ctx context.Context, dest Destination, data []byte, contentType string) error {
	switch dest.Kind {
	case DestinationStdout:
		if _, err := w.stdout.Write(data); err != nil {
			return goerr.Wrap(err, "failed to write to stdout")
		}
		return nil

	case DestinationFile:
		return writeFile(ctx, dest.Path, data)

	case DestinationGCS:
		return w.writeGCS(ctx, dest, data, contentType)

	default:
		return goerr.Wrap(ErrInvalidDestination, "unknown destination kind", goerr.V("kind", dest.Kind))
	}
}

func writeFile(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create export directory", goerr.V("dir", dir))
		}
	}

	// #nosec G304 - path is provided by CLI argument
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open export file", goerr.V("path", path))
	}
	defer safe.Close(ctx, f)

	if _, err := f.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write export file", goerr.V("path", path))
	}
	return nil
}

func (w *Writer) writeGCS(ctx context.Context, dest Destination, data []byte, contentType string) error {
	var opts []option.ClientOption
	if w.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(w.credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return goerr.Wrap(err, "failed to create cloud storage client")
	}
	defer safe.Close(ctx, client)

	obj := client.Bucket(dest.Bucket).Object(dest.Object)
	ow := obj.NewWriter(ctx)
	ow.ContentType = contentType
	ow.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := ow.Write(data); err != nil {
		_ = ow.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("destination", dest.String()))
	}
	if err := ow.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("destination", dest.String()))
	}
	return nil
}
