// Package shutdown turns process termination signals into root context
// cancellation.
//
// The first SIGINT or SIGTERM cancels the root context. Later signals are
// only logged, since shutdown is already under way.
//
// Usage:
//
//	w := shutdown.NewWatcher(logger)
//	defer w.Stop()
//	go w.Run(root, wg.Acquire(), root)
package shutdown
