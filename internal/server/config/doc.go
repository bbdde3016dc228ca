// Package config provides server configuration for portal.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of addresses, levels and limits
//
// Configuration is loaded via internal/infra/confloader from
// portal.config.yaml in the working directory and PORTAL_ environment
// variables.
package config
