// Package service provides the service registry for DriveDeck provider management.
//
// The registry maintains a catalog of available service providers and routes
// tool execution requests to them by tool ID prefix.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Features:
//   - Thread-safe service registration
//   - Category-based filtering
//   - Tool execution with context passing
//   - Service statistics and health
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(mediaProvider)
//	result, err := registry.Execute(ctx, "media.list", params, nil)
package service
