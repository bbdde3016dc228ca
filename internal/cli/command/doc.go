// Package command provides CLI command definitions for portal-control.
//
// This package defines the CLI commands using urfave/cli/v2:
//
//   - root.go: Root command and global flags
//   - shutdown.go: Ask a running server to shut down
//
// The server address is read from the same config file the server uses.
package command
