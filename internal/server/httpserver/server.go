package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

// Server represents the HTTP server.
type Server struct {
	httpServer      *http.Server
	listener        net.Listener
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// Listen binds addr and returns a server ready to Run.
func Listen(addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		listener:        ln,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run serves requests until ctx is cancelled, then shuts the server down
// and releases permit.
func (s *Server) Run(ctx context.Context, permit *lifecycle.Permit) {
	defer permit.Release()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()
	s.logger.Info("http server started", "addr", s.listener.Addr().String())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	// ctx is already cancelled, so the shutdown deadline needs its own root.
	shutdownCtx := lifecycle.WithTimeout(s.shutdownTimeout)
	defer shutdownCtx.Cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown incomplete", "error", err)
		s.httpServer.Close()
	}
	<-errCh
	s.logger.Info("http server stopped")
}
