// Package httpserver provides the HTTP observability endpoint for portal.
//
// This package serves operational endpoints using stdlib net/http:
//
//   - Health endpoint: /health
//   - Metrics endpoint: /metrics
//
// Features:
//
//   - Middleware chain: Recover, RequestID, access log
//   - Graceful shutdown bounded by a fresh timeout context once the root
//     context is cancelled
package httpserver
