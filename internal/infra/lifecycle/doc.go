// Package lifecycle provides the cancellation and completion primitives
// that coordinate process shutdown.
//
// It provides two building blocks:
//
//   - Context: a tree of cancellation signals. Cancelling a node cascades
//     to every descendant. Any goroutine may wait for a node without polling.
//   - WaitGroup: a counter of outstanding permits with a single waiter slot.
//     The orchestrator waits on it to know when every subsystem has drained.
//
// Usage:
//
//	root := lifecycle.New()
//	wg := lifecycle.NewWaitGroup()
//
//	permit := wg.Acquire()
//	go func() {
//		defer permit.Release()
//		<-root.Done()
//	}()
//
//	root.Cancel()
//	wg.Wait()
package lifecycle
