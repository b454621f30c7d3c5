// Package main is the entry point for the Web IDE workspace backend.
//
// The server keeps in-memory editor workspaces (file tree, open tabs,
// edited buffers) and exposes them to the browser shell:
//
//	Browser (explorer, tabs, editor) → REST API    → workspace manager
//	                                 → WebSocket   → per-workspace stream
//
// The server provides:
//   - REST API for workspace lifecycle and editor commands
//   - WebSocket command stream with snapshots pushed on every change
//   - Sanitized HTML and Markdown previews
//   - Project templates from YAML, TOML or JSON files, or an imported directory
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Built-in sample project
//	./server -port 8000
//
//	# Import a project directory, development logging
//	./server -import ./my-app -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
