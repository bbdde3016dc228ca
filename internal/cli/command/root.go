package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/dfxyz/portal/internal/infra/buildinfo"
	"github.com/dfxyz/portal/internal/infra/confloader"
	"github.com/dfxyz/portal/internal/server/config"
)

// App creates the CLI application writing to stdout and stderr.
func App(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "portal-control",
		Usage:     "Control a running portal server",
		Version:   buildinfo.Get().String(),
		Flags:     globalFlags(),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			ShutdownCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the server config file",
			EnvVars: []string{"PORTAL_CONFIG"},
			Value:   config.DefaultConfigFile,
		},
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "Server control address, overrides the config file",
		},
	}
}

// ServerAddress resolves the control address from flags and config.
func ServerAddress(c *cli.Context) (string, error) {
	if addr := c.String("address"); addr != "" {
		return addr, nil
	}

	cfg := config.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(c.String("config")))
	if err := loader.Load(cfg); err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Address == "" {
		return "", errors.New("address is not configured")
	}
	return cfg.Address, nil
}
