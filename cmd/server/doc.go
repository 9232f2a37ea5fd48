// Package main is the entry point for the DriveDeck backend server.
//
// This application serves the desktop UI with everything it needs to browse
// and manage files on removable media: mount discovery, recursive listing,
// sandboxed file mutations, and a WebSocket event stream.
//
// Architecture:
//
//	Frontend (Tauri/React) → Go Backend → Local Filesystem
//
// The server provides:
//   - REST API for mounts, listings and file operations
//   - WebSocket streaming of file events
//   - Service provider registry
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (DRIVEDECK_* prefix)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 9090
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
