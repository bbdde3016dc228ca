// Package main provides the entry point for portal.
//
// portal runs until it receives SIGINT, SIGTERM or a shutdown request from
// portal-control, then stops every subsystem gracefully.
//
// Usage:
//
//	portal run --workdir /var/lib/portal
//	portal run --workdir . --config ./portal.config.yaml
package main
