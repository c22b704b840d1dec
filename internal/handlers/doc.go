// Package handlers provides the HTTP handlers of the photo gallery.
//
// It includes handlers for:
//   - Original image delivery (/api/file, /attach)
//   - Thumbnails, created on demand with a placeholder fallback
//   - Category provisioning
//   - Format and backend introspection
//   - Health checks, version and Prometheus metrics
package handlers
