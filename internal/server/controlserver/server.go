package controlserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

// Server represents the control server.
type Server struct {
	conn    *net.UDPConn
	handler *Handler
	logger  *slog.Logger
}

// Listen binds address and returns a server ready to Run.
func Listen(address string, handler *Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve control address %q: %w", address, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind control address %q: %w", address, err)
	}

	local := conn.LocalAddr().(*net.UDPAddr)
	handler.replyIP = local.IP

	return &Server{
		conn:    conn,
		handler: handler,
		logger:  logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Run reads datagrams until ctx is cancelled. Each datagram is handled on
// its own goroutine holding a clone of permit.
func (s *Server) Run(ctx context.Context, permit *lifecycle.Permit) {
	defer permit.Release()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		s.conn.Close()
	}()

	s.logger.Info("control server started", "addr", s.Addr().String())

	buf := make([]byte, controlv1.MaxMessageSize)
	for {
		n, from, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("control server stopped")
			} else {
				s.logger.Error("control server read failed", "error", err)
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		p := permit.Clone()
		go func(from netip.AddrPort) {
			defer p.Release()
			s.handler.Handle(ctx, data, from)
		}(from)
	}
}
