// Package connection provides the control transport for portal-control.
//
// A request is one datagram sent from an ephemeral local socket. The reply
// may come from any port on the server host, so the socket is never
// connected to the server address.
package connection
