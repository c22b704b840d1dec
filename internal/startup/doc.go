// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] builds an immutable [Config] from three layers, later ones
// winning:
//
//  1. built-in defaults ([DefaultConfig])
//  2. the YAML file named by CONFIG_FILE, if set
//  3. environment variables, after a .env file in the working directory
//     has been loaded into the environment
//
// Supported keys (YAML name in parentheses):
//
//   - GALLERY_DIR (gallery_dir): originals, one sub-directory per category (default: /gallery)
//   - THUMBNAIL_DIR (thumbnail_dir): thumbnails mirroring the gallery layout (default: /thumbnail)
//   - STUB_NAME (stub_name): protective stub copied into new categories (default: index.html)
//   - PORT (port): HTTP server port (default: 8080)
//   - METRICS_PORT (metrics_port): Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED (metrics_enabled): enable the metrics server (default: true)
//   - THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT: thumbnail bounding box (default: 300x300)
//   - MAX_SOURCE_DIMENSION: longest accepted source side in pixels (default: 16384)
//   - MAX_SOURCE_PIXELS: largest accepted source area (default: 100000000)
//   - MAX_ASSET_SIZE: largest file the asset streamer sends, in bytes (default: 10 MiB)
//   - MEMORY_CEILING: process memory ceiling in bytes (default: derived from
//     MEMORY_LIMIT or GOMEMLIMIT, else 512 MiB)
//   - VIPS_ENABLED, IMAGING_ENABLED: register the optional resize backends (default: true)
//   - LOG_STATIC_FILES: log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//
// LOG_LEVEL, MEMORY_LIMIT, MEMORY_RATIO and GOMEMLIMIT are read by the
// logging and memory packages directly.
//
// Both directories are created when missing. A thumbnail directory that is
// not writable is reported but not fatal; thumbnail requests then fall back
// to placeholders.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogMemoryConfig]: memory ceiling and per-decode budget
//   - [LogThumbnailInit]: registered resize backends in priority order
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: graceful shutdown
package startup
