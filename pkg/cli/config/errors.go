package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for CLI configuration
var (
	ErrInvalidBackend   = goerr.New("invalid repository backend")
	ErrMissingProjectID = goerr.New("firestore-project-id is required when using firestore backend")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
	ErrMissingChannel   = goerr.New("slack-channel-id is required when slack-bot-token is set")
)

// Context keys for error values
const (
	BackendKey   = "backend"
	LogLevelKey  = "log_level"
	LogFormatKey = "log_format"
	LogOutputKey = "log_output"
)
