package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultEnvFile is loaded when present, before flags are resolved.
	DefaultEnvFile = ".env"

	// DefaultNotifyTimeout bounds one asynchronous notification publish.
	DefaultNotifyTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)
