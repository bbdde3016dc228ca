package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Reason classifies why a context was cancelled. It is diagnostic only.
type Reason int

const (
	// ReasonUser is an explicit Cancel call.
	ReasonUser Reason = iota + 1
	// ReasonParent is a cascade from a cancelled ancestor.
	ReasonParent
	// ReasonTimeout is the expiry of the context's own timer.
	ReasonTimeout
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonUser:
		return "user"
	case ReasonParent:
		return "parent"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// nextID hands out context ids. Ids are never reused.
var nextID atomic.Uint64

// Context is a node in a cancellation tree.
//
// A Context is Alive until it is cancelled, either directly, by one of its
// ancestors, or by its timer. Cancellation is terminal and idempotent.
// Context implements context.Context so it can be passed to any API that
// accepts one.
type Context struct {
	id       uint64
	parent   *Context
	deadline time.Time

	// done is closed exactly once, on the Alive -> Cancelled transition.
	done chan struct{}

	mu sync.Mutex
	// children is non-nil while the context is Alive and holds every
	// direct child that is still Alive.
	children map[uint64]*Context
	reason   Reason
}

var _ context.Context = (*Context)(nil)

func newContext(parent *Context) *Context {
	c := &Context{
		id:       nextID.Add(1) - 1,
		parent:   parent,
		done:     make(chan struct{}),
		children: make(map[uint64]*Context),
	}
	stats.created.Add(1)

	if parent == nil {
		slog.Debug("context created", "context", c.id)
	} else {
		slog.Debug("context created", "context", c.id, "parent", parent.id)
	}
	return c
}

// New creates a root context.
func New() *Context {
	return newContext(nil)
}

// WithTimeout creates a root context that cancels itself after d unless it
// is cancelled earlier.
func WithTimeout(d time.Duration) *Context {
	c := newContext(nil)
	c.startTimer(d)
	return c
}

// NewChild derives a child context.
//
// If c is already cancelled the child is returned already cancelled, so an
// Alive child is never observed under a cancelled parent.
func (c *Context) NewChild() *Context {
	child := newContext(c)

	c.mu.Lock()
	if c.children != nil {
		c.children[child.id] = child
		c.mu.Unlock()
		return child
	}
	c.mu.Unlock()

	// The child has no waiters and no children yet, nothing to cascade.
	child.mu.Lock()
	child.children = nil
	child.reason = ReasonParent
	child.mu.Unlock()
	close(child.done)
	stats.cancelled(ReasonParent)

	return child
}

// NewChildWithTimeout derives a child context that cancels itself after d.
// No timer is started when the child is born cancelled.
func (c *Context) NewChildWithTimeout(d time.Duration) *Context {
	child := c.NewChild()
	if !child.Cancelled() {
		child.startTimer(d)
	}
	return child
}

func (c *Context) startTimer(d time.Duration) {
	c.deadline = time.Now().Add(d)
	timer := time.NewTimer(d)

	go func() {
		select {
		case <-c.done:
			timer.Stop()
		case <-timer.C:
			c.cancel(ReasonTimeout)
		}
	}()
}

// ID returns the context id.
func (c *Context) ID() uint64 {
	return c.id
}

// ParentID returns the id of the parent context, if any.
func (c *Context) ParentID() (uint64, bool) {
	if c.parent == nil {
		return 0, false
	}
	return c.parent.id, true
}

// Cancel cancels the context and all of its descendants.
// Calling Cancel on a cancelled context has no effect.
func (c *Context) Cancel() {
	c.cancel(ReasonUser)
}

// Done returns a channel that is closed once the context is cancelled.
func (c *Context) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the context is cancelled.
func (c *Context) Wait() {
	<-c.done
}

// Cancelled reports whether the context has been cancelled.
func (c *Context) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.children == nil
}

// Reason returns the reason the context was cancelled with.
// The second value is false while the context is Alive.
func (c *Context) Reason() (Reason, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.children != nil {
		return 0, false
	}
	return c.reason, true
}

// Err returns context.Canceled once the context is cancelled, whatever the
// reason, and nil before.
func (c *Context) Err() error {
	if c.Cancelled() {
		return context.Canceled
	}
	return nil
}

// Deadline returns the time at which the context's own timer fires.
func (c *Context) Deadline() (time.Time, bool) {
	return c.deadline, !c.deadline.IsZero()
}

// Value always returns nil. Contexts carry no values.
func (c *Context) Value(key any) any {
	return nil
}

// String implements fmt.Stringer.
func (c *Context) String() string {
	if c.parent == nil {
		return fmt.Sprintf("context %d", c.id)
	}
	return fmt.Sprintf("context %d (parent %d)", c.id, c.parent.id)
}

func (c *Context) cancel(reason Reason) {
	c.mu.Lock()
	children := c.children
	if children == nil {
		c.mu.Unlock()
		return
	}
	c.children = nil
	c.reason = reason
	c.mu.Unlock()

	stats.cancelled(reason)
	switch reason {
	case ReasonParent:
		slog.Debug("context cancelled by parent", "context", c.id, "parent", c.parent.id)
	case ReasonTimeout:
		slog.Debug("context timeout", "context", c.id)
	default:
		slog.Debug("context cancelled", "context", c.id)
	}

	close(c.done)

	// children was detached under the lock; nothing else can reach it now.
	for _, child := range children {
		child.cancel(ReasonParent)
	}

	// A parent being cancelled has already detached its whole children map,
	// so a cascaded child must not touch it. This holds only while every
	// cancellation of a parent detaches its map before cascading.
	if reason != ReasonParent && c.parent != nil {
		c.parent.removeChild(c.id)
	}
}

func (c *Context) removeChild(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.children != nil {
		delete(c.children, id)
	}
}

// childCount returns the number of live children tracked by c.
func (c *Context) childCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.children)
}
