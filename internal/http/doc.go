// Package http provides HTTP handlers and routing for the DriveDeck REST API.
//
// This package implements all HTTP endpoints using the Gin framework,
// covering mount discovery, file listing and search, file mutations, and
// generic service execution.
//
// Endpoints:
//   - Health: / and /health
//   - Mounts: /mounts
//   - Files: /files, /files/search, /files/rename, /files/delete, /files/move
//   - Folders: /folders
//   - Services: /services, /services/execute
//
// File operation failures carry a machine-readable "kind" field alongside
// the message, mapped to status codes: not_found is 404, already_exists is
// 409, path_escape is 400, permission_denied is 403 and io_error is 500.
//
// Example Usage:
//
//	handlers := http.NewHandlers(provider, registry, broadcaster, logger)
//	router.GET("/health", handlers.Health)
//	router.POST("/files/rename", handlers.RenameFile)
package http
