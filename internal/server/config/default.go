// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultConfigFile = "portal.config.yaml"
	DefaultLogFile    = "portal.log"

	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"
	DefaultRotateFileNumLimit     = 3
	DefaultRotateFileLenThreshold = 128 << 20

	DefaultShutdownTimeout = 5 * time.Second
)

// Default returns the default server configuration.
// The control address has no default and must be configured.
func Default() *ServerConfig {
	return &ServerConfig{
		Logger: LoggerSection{
			Level:                  DefaultLogLevel,
			Format:                 DefaultLogFormat,
			UseStdio:               true,
			UseFile:                true,
			RotateFileNumLimit:     DefaultRotateFileNumLimit,
			RotateFileLenThreshold: DefaultRotateFileLenThreshold,
		},
		Shutdown: ShutdownSection{
			Timeout: DefaultShutdownTimeout,
		},
	}
}
