// Package app assembles the portal server.
//
// An App owns the root lifecycle context and the wait group. Start brings
// up the subsystems in order:
//
//  1. Logging pipeline
//  2. Signal watcher
//  3. Control server
//  4. Metrics server (when metrics.addr is set)
//  5. Config watcher (when a config file is used)
//
// Each subsystem holds one permit for as long as it runs. A subsystem that
// fails to start cancels the root, so the ones already running wind down
// and Wait returns the start errors.
package app
