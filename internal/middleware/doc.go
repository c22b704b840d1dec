// Package middleware provides HTTP middleware for the photo gallery.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip compression for JSON, SVG and text responses
package middleware
