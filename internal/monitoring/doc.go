/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the backend
service, tracking HTTP requests, mount discovery, recursive listings, file
operations, and the change event stream.

# Features

- HTTP request metrics (latency, throughput, size)
- Mount discovery metrics (scan count, yield)
- Walk metrics (duration, files returned, skipped directories)
- File operation metrics (per-op counters with outcome labels)
- Service call metrics (duration, errors)
- WebSocket connection and event stream metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordMountScan(len(mounts))
	metrics.RecordFileOp("rename", "ok", elapsed)

	// Time operations
	timer := monitoring.NewTimer(metrics, "media", "media.list")
	// ... perform operation ...
	timer.Stop("ok")

# Metrics Endpoint

Each collector carries its own registry; expose it via:

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
