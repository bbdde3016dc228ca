package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

// Canceler is the root context a signal cancels.
type Canceler interface {
	Cancel()
}

// Watcher receives termination signals.
type Watcher struct {
	sigCh  chan os.Signal
	logger *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewWatcher registers for SIGINT and SIGTERM. Until Stop is called the
// process is no longer terminated by those signals.
func NewWatcher(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		sigCh:  make(chan os.Signal, 1),
		logger: logger,
		stop:   make(chan struct{}),
	}
	signal.Notify(w.sigCh, syscall.SIGINT, syscall.SIGTERM)
	return w
}

// Run cancels root on the first signal. It releases permit once ctx is
// done and keeps logging later signals until Stop.
func (w *Watcher) Run(ctx context.Context, permit *lifecycle.Permit, root Canceler) {
	defer permit.Release()

	select {
	case sig := <-w.sigCh:
		w.logger.Info("received signal, shutting down", "signal", sig.String())
		root.Cancel()
		<-ctx.Done()
	case <-ctx.Done():
	case <-w.stop:
		return
	}

	go w.absorb()
}

func (w *Watcher) absorb() {
	for {
		select {
		case sig := <-w.sigCh:
			w.logger.Info("already shutting down", "signal", sig.String())
		case <-w.stop:
			return
		}
	}
}

// Stop unregisters the signal handler.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		signal.Stop(w.sigCh)
		close(w.stop)
	})
}
