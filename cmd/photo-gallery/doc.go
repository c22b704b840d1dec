// Package main provides the entry point for the Photo Gallery server.
//
// The server generates thumbnails for images under a gallery root on demand,
// stores them in a parallel thumbnail tree, and streams originals with
// hardened response headers.
//
// # Application Lifecycle
//
//  1. Configuration: defaults, then CONFIG_FILE (YAML), then the environment
//     (a .env file is loaded first when present)
//  2. Memory: GOMEMLIMIT from MEMORY_LIMIT/MEMORY_RATIO or the cgroup limit;
//     the resulting ceiling sizes the per-image decode budget (25%)
//  3. Thumbnail backends: libvips (if VIPS_ENABLED and it starts), imaging
//     (if IMAGING_ENABLED), then the built-in resizer, which is always present
//  4. Metrics: label pre-population, runtime memory collector
//  5. HTTP server: routes, metrics middleware, access log, gzip
//  6. Graceful shutdown on SIGINT/SIGTERM
//
// # HTTP Server
//
// Main server (PORT, default 8080):
//
//	GET|HEAD /api/file/{path}        original image, inline
//	GET|HEAD /attach?file={path}     original image, inline
//	GET|HEAD /api/thumbnail/{path}   thumbnail, placeholder on failure
//	POST     /api/categories         {"name": "..."} creates a category
//	GET      /api/formats            supported formats
//	GET      /api/backends           registered resize backends
//	GET      /health /healthz /livez /readyz /version
//
// Metrics server (METRICS_PORT, default 9090, when METRICS_ENABLED):
//
//	GET /metrics, GET /health
//
// # Environment Variables
//
//   - GALLERY_DIR: gallery root (default /gallery)
//   - THUMBNAIL_DIR: thumbnail root (default /thumbnail)
//   - STUB_NAME: placeholder copied into new categories (default index.html)
//   - THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT: thumbnail box (default 300x300)
//   - MAX_SOURCE_DIMENSION, MAX_SOURCE_PIXELS: source ceilings
//   - MAX_ASSET_SIZE: largest original served, in bytes (default 10 MiB)
//   - MEMORY_CEILING: process memory ceiling override, in bytes
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: Go memory limit
//   - VIPS_ENABLED, IMAGING_ENABLED: optional backends (default true)
//   - PORT, METRICS_PORT, METRICS_ENABLED
//   - LOG_LEVEL, LOG_STATIC_FILES, LOG_HEALTH_CHECKS
//   - CONFIG_FILE: YAML configuration file
//
// # Graceful Shutdown
//
//  1. Stop accepting requests and drain the HTTP server (30s timeout)
//  2. Stop the metrics server and collector
//  3. Shut down libvips
//  4. Flush buffered log lines
package main
