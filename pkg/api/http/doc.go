// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Health checks
//   - Prometheus metrics
//   - Resolved bot settings (credentials redacted)
//   - Designated and loaded modules
//   - Typed bot state storage
package http
