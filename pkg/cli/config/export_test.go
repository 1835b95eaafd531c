package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string, notifyOverdue bool) *Slack {
	return &Slack{
		botToken:      botToken,
		channelID:     channelID,
		notifyOverdue: notifyOverdue,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewSettingsForTest creates a Settings config for testing purposes
func NewSettingsForTest(path string) *Settings {
	return &Settings{path: path}
}
