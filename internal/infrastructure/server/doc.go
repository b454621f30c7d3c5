// Package server assembles the workspace backend.
//
// It builds the template registry from configuration, creates the workspace
// manager, and mounts the REST API, the WebSocket command stream and the
// Prometheus endpoint on one gin router behind the standard middleware chain:
//
//	Recovery → RequestID → AccessLog → Metrics → CORS → RateLimit
//
// Responses are gzip-compressed unless disabled; WebSocket upgrades bypass
// compression.
package server
