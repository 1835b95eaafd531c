package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrInvalidBackend can be identified",
			err:           goerr.Wrap(config.ErrInvalidBackend, "cannot configure repository"),
			sentinelError: config.ErrInvalidBackend,
			wantMatch:     true,
		},
		{
			name:          "ErrMissingProjectID can be identified",
			err:           goerr.Wrap(config.ErrMissingProjectID, "cannot configure repository"),
			sentinelError: config.ErrMissingProjectID,
			wantMatch:     true,
		},
		{
			name:          "ErrInvalidLogLevel can be identified",
			err:           goerr.Wrap(config.ErrInvalidLogLevel, "unknown log level"),
			sentinelError: config.ErrInvalidLogLevel,
			wantMatch:     true,
		},
		{
			name:          "Different sentinel errors do not match",
			err:           goerr.Wrap(config.ErrInvalidLogFormat, "unknown log format"),
			sentinelError: config.ErrInvalidLogLevel,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := errors.Is(tt.err, tt.sentinelError)
			gt.Value(t, matched).Equal(tt.wantMatch)
		})
	}
}

func TestConfigErrors_ContextExtraction(t *testing.T) {
	_, err := config.NewRepositoryForTest("postgres", "").Configure(t.Context())
	gt.Error(t, err).Is(config.ErrInvalidBackend)

	var ge *goerr.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected goerr.Error, got %T", err)
	}
	gt.Value(t, ge.Values()[config.BackendKey]).Equal("postgres")
}
