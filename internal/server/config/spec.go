// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for the portal server.
type ServerConfig struct {
	// Address is the UDP address of the control listener (e.g. "127.0.0.1:6553").
	Address  string          `koanf:"address"`
	Logger   LoggerSection   `koanf:"logger"`
	Control  ControlSection  `koanf:"control"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Shutdown ShutdownSection `koanf:"shutdown"`
}

// LoggerSection configures logging.
type LoggerSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// UseStdio writes log lines to stdout, errors to stderr.
	UseStdio bool `koanf:"use_stdio"`

	// UseFile writes log lines to portal.log in the working directory.
	UseFile bool `koanf:"use_file"`

	// RotateFileNumLimit is the number of rolled files kept.
	// Zero disables rotation.
	RotateFileNumLimit int `koanf:"rotate_file_num_limit"`

	// RotateFileLenThreshold is the size in bytes at which the log file rolls.
	RotateFileLenThreshold int64 `koanf:"rotate_file_len_threshold"`
}

// ControlSection configures the control listener.
type ControlSection struct {
	// RateLimit is the maximum number of datagrams handled per second.
	// Zero means unlimited.
	RateLimit int `koanf:"rate_limit"`

	// AllowedSources restricts senders by address prefix, given as dotted
	// octets (e.g. "127", "10.0"). Empty allows every sender.
	AllowedSources []string `koanf:"allowed_sources"`
}

// MetricsSection configures the metrics endpoint.
type MetricsSection struct {
	// Addr is the HTTP listen address. Empty disables the endpoint.
	Addr string `koanf:"addr"`
}

// ShutdownSection configures shutdown behavior.
type ShutdownSection struct {
	// Timeout bounds how long a subsystem drains connections once the
	// process is shutting down.
	Timeout time.Duration `koanf:"timeout"`
}
