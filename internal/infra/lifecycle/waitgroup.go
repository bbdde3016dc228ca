package lifecycle

import (
	"sync"
	"sync/atomic"
)

// closedChan is returned by Done when nothing is outstanding.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// WaitGroup counts outstanding permits and wakes its waiter once the count
// drops to zero.
//
// Unlike sync.WaitGroup the count is carried by Permit values, so a permit
// can be handed to a goroutine and released exactly once no matter how the
// goroutine exits. A WaitGroup supports a single logical waiter.
type WaitGroup struct {
	count atomic.Int64

	mu     sync.Mutex
	waiter chan struct{}
}

// Permit represents one unit of outstanding work on a WaitGroup.
type Permit struct {
	wg       *WaitGroup
	released atomic.Bool
}

// NewWaitGroup creates a WaitGroup with no outstanding permits.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{}
}

// Acquire increments the counter and returns a permit bound to wg.
func (wg *WaitGroup) Acquire() *Permit {
	wg.count.Add(1)
	return &Permit{wg: wg}
}

// Count returns the number of outstanding permits.
func (wg *WaitGroup) Count() int {
	return int(wg.count.Load())
}

// Done returns a channel that is closed once no permit is outstanding.
func (wg *WaitGroup) Done() <-chan struct{} {
	if wg.count.Load() == 0 {
		return closedChan
	}

	wg.mu.Lock()
	defer wg.mu.Unlock()

	// The last release may have happened between the check above and
	// taking the lock.
	if wg.count.Load() == 0 {
		return closedChan
	}
	if wg.waiter == nil {
		wg.waiter = make(chan struct{})
	}
	return wg.waiter
}

// Wait blocks until no permit is outstanding.
func (wg *WaitGroup) Wait() {
	<-wg.Done()
}

func (wg *WaitGroup) release() {
	if wg.count.Add(-1) != 0 {
		return
	}

	wg.mu.Lock()
	defer wg.mu.Unlock()
	// A permit acquired after the decrement owns the next wakeup.
	if wg.waiter != nil && wg.count.Load() == 0 {
		close(wg.waiter)
		wg.waiter = nil
	}
}

// Clone acquires another permit on the same WaitGroup. It is used when a
// subsystem hands work to a goroutine that must also be waited for.
func (p *Permit) Clone() *Permit {
	return p.wg.Acquire()
}

// Release gives the permit back. Only the first call has an effect.
func (p *Permit) Release() {
	if p.released.CompareAndSwap(false, true) {
		p.wg.release()
	}
}
