// Package main provides the entry point for portal-control.
//
// portal-control sends control requests to a running portal server. The
// server address is read from the server's config file.
//
// Usage:
//
//	portal-control shutdown
//	portal-control --config /etc/portal/portal.config.yaml shutdown --timeout 3s
package main
