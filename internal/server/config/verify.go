// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg.Address == "" {
		return errors.New("address is required")
	}
	if err := verifyHostPort(cfg.Address); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if err := verifyLogger(&cfg.Logger); err != nil {
		return err
	}
	if err := verifyControl(&cfg.Control); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		if err := verifyHostPort(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
	}
	if cfg.Shutdown.Timeout <= 0 {
		return errors.New("shutdown.timeout must be positive")
	}
	return nil
}

func verifyHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

func verifyLogger(cfg *LoggerSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logger.level: unknown level %q", cfg.Level)
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "console", "json":
	default:
		return fmt.Errorf("logger.format: unknown format %q", cfg.Format)
	}

	if cfg.RotateFileNumLimit < 0 {
		return errors.New("logger.rotate_file_num_limit must not be negative")
	}
	if cfg.RotateFileNumLimit > 0 && cfg.RotateFileLenThreshold <= 0 {
		return errors.New("logger.rotate_file_len_threshold must be positive when rotation is enabled")
	}
	return nil
}

func verifyControl(cfg *ControlSection) error {
	if cfg.RateLimit < 0 {
		return errors.New("control.rate_limit must not be negative")
	}
	for _, src := range cfg.AllowedSources {
		for _, word := range strings.Split(src, ".") {
			if word == "" {
				return fmt.Errorf("control.allowed_sources: invalid pattern %q", src)
			}
		}
	}
	return nil
}
