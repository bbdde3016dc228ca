// Package controlserver provides the UDP control endpoint for portal.
//
// The server reads one request per datagram and handles each on its own
// goroutine. Supported commands:
//
//   - shutdown: cancel the root context and acknowledge
//
// Access control:
//
//   - Optional source allow-list of address prefixes ("127.0.0", "10")
//   - Optional global rate limit in datagrams per second
//
// Malformed, empty, denied and rate-limited datagrams are dropped without
// a reply.
package controlserver
