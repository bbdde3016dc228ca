package main

import (
	"fmt"
	"os"

	"github.com/dfxyz/portal/internal/cli/command"
)

func main() {
	app := command.App(os.Stdout, os.Stderr)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
