package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
	"github.com/dfxyz/portal/internal/cli/connection"
)

// DefaultTimeout is how long shutdown waits for the acknowledgement.
const DefaultTimeout = time.Second

// ShutdownCommand returns the shutdown command.
func ShutdownCommand() *cli.Command {
	return &cli.Command{
		Name:  "shutdown",
		Usage: "Ask the server to shut down gracefully",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "How long to wait for the acknowledgement",
				Value:   DefaultTimeout,
			},
		},
		Action: shutdown,
	}
}

func shutdown(c *cli.Context) error {
	addr, err := ServerAddress(c)
	if err != nil {
		return err
	}

	client := connection.NewUDPClient(addr, c.Duration("timeout"))
	resp, err := client.Do(context.Background(), &controlv1.ControlRequest{Content: controlv1.ShutdownRequest{}})
	if errors.Is(err, connection.ErrTimeout) {
		fmt.Fprintln(c.App.ErrWriter, "request timeout")
		return nil
	}
	if err != nil {
		return err
	}

	switch resp.Content.(type) {
	case controlv1.ShutdownAck, *controlv1.ShutdownAck:
		fmt.Fprintln(c.App.Writer, "commencing shutdown...")
		return nil
	default:
		return fmt.Errorf("unexpected response %T", resp.Content)
	}
}
