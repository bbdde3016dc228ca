package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
)

// ErrTimeout is returned when no valid reply arrives in time.
var ErrTimeout = errors.New("request timeout")

// UDPClient sends control requests to a portal server.
type UDPClient struct {
	addr    string
	timeout time.Duration
}

// NewUDPClient creates a client for the server at addr.
func NewUDPClient(addr string, timeout time.Duration) *UDPClient {
	return &UDPClient{addr: addr, timeout: timeout}
}

// Do sends req and waits for the reply. Datagrams that do not decode are
// ignored while waiting.
func (c *UDPClient) Do(ctx context.Context, req *controlv1.ControlRequest) (*controlv1.ControlResponse, error) {
	server, err := net.ResolveUDPAddr("udp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("resolve server address %q: %w", c.addr, err)
	}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("bind local socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	defer stop()

	if _, err := conn.WriteToUDP(payload, server); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, controlv1.MaxMessageSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, ErrTimeout
			}
			return nil, fmt.Errorf("read reply: %w", err)
		}

		var resp controlv1.ControlResponse
		if err := resp.Unmarshal(buf[:n]); err != nil {
			continue
		}
		return &resp, nil
	}
}
