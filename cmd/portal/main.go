package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/dfxyz/portal/internal/infra/buildinfo"
	"github.com/dfxyz/portal/internal/infra/confloader"
	"github.com/dfxyz/portal/internal/server/app"
	"github.com/dfxyz/portal/internal/server/config"
)

func main() {
	cliApp := &cli.App{
		Name:    "portal",
		Usage:   "Run the portal server",
		Version: buildinfo.Get().String(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Start the server in the foreground",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "workdir",
						Aliases: []string{"w"},
						Usage:   "Working directory for the log file",
						EnvVars: []string{"PORTAL_WORKDIR"},
						Value:   ".",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Config file (default <workdir>/" + config.DefaultConfigFile + ")",
						EnvVars: []string{"PORTAL_CONFIG"},
					},
				},
				Action: run,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	workDir, err := filepath.Abs(c.String("workdir"))
	if err != nil {
		return fmt.Errorf("resolve workdir: %w", err)
	}

	configPath := c.String("config")
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(workDir, config.DefaultConfigFile)
	}

	cfg, configPath, err := loadConfig(configPath, explicit)
	if err != nil {
		return err
	}

	return app.New(workDir, configPath, cfg).Run()
}

// loadConfig loads configuration from file and environment. A missing
// default config file is not an error; the returned path is then empty.
func loadConfig(path string, explicit bool) (*config.ServerConfig, string, error) {
	cfg := config.Default()

	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("config file: %w", err)
		}
		path = ""
	}

	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if err := config.Verify(cfg); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, path, nil
}
