package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

// ErrClosed is returned by pipeline writers once the pipeline stopped
// accepting entries.
var ErrClosed = errors.New("logger: pipeline closed")

// PipelineConfig selects the sinks of a Pipeline. Nil sinks are skipped.
type PipelineConfig struct {
	// Stdout receives regular entries.
	Stdout io.Writer
	// Stderr receives error entries.
	Stderr io.Writer
	// File receives every entry. It is closed when the pipeline stops.
	File io.WriteCloser
}

type entry struct {
	data    []byte
	isError bool
	// flushed is set on flush markers and closed once reached.
	flushed chan struct{}
}

// Pipeline queues formatted log output and writes it from a single
// backend goroutine started by Run.
type Pipeline struct {
	cfg PipelineConfig

	mu     sync.Mutex
	queue  []entry
	closed bool

	wake    chan struct{}
	stopped chan struct{}
}

// NewPipeline creates a pipeline writing to the sinks in cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

type pipeWriter struct {
	p       *Pipeline
	isError bool
}

func (w pipeWriter) Write(b []byte) (int, error) {
	data := make([]byte, len(b))
	copy(data, b)
	if err := w.p.enqueue(entry{data: data, isError: w.isError}); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Stdout returns a writer for regular entries.
func (p *Pipeline) Stdout() io.Writer {
	return pipeWriter{p: p}
}

// Stderr returns a writer for error entries.
func (p *Pipeline) Stderr() io.Writer {
	return pipeWriter{p: p, isError: true}
}

func (p *Pipeline) enqueue(e entry) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.queue = append(p.queue, e)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every entry queued before the call has been written.
// After the pipeline closed it waits for the final drain instead.
func (p *Pipeline) Flush() {
	marker := entry{flushed: make(chan struct{})}
	if err := p.enqueue(marker); err != nil {
		<-p.stopped
		return
	}
	select {
	case <-marker.flushed:
	case <-p.stopped:
	}
}

// Stopped returns a channel closed after the final drain.
func (p *Pipeline) Stopped() <-chan struct{} {
	return p.stopped
}

// Run writes queued entries until ctx is cancelled. It then closes the
// input, writes everything still queued and releases permit.
func (p *Pipeline) Run(ctx context.Context, permit *lifecycle.Permit) {
	defer permit.Release()
	defer close(p.stopped)

	for {
		select {
		case <-p.wake:
			p.drain()
		case <-ctx.Done():
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			p.drain()
			if p.cfg.File != nil {
				if err := p.cfg.File.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
				}
			}
			return
		}
	}
}

func (p *Pipeline) drain() {
	for {
		p.mu.Lock()
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			p.write(e)
		}
	}
}

func (p *Pipeline) write(e entry) {
	if e.flushed != nil {
		close(e.flushed)
		return
	}

	out := p.cfg.Stdout
	if e.isError {
		out = p.cfg.Stderr
	}
	if out != nil {
		if _, err := out.Write(e.data); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		}
	}
	if p.cfg.File != nil {
		if _, err := p.cfg.File.Write(e.data); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write log file: %v\n", err)
		}
	}
}
