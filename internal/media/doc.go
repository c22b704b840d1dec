// Package media turns gallery images into size-constrained thumbnails.
//
// A [Generator] owns an ordered list of [Backend] implementations registered
// once at startup:
//
//  1. libvips through govips, when VIPS_ENABLED and InitVips succeeded
//  2. github.com/disintegration/imaging, when IMAGING_ENABLED
//  3. the built-in backend (standard decoders and golang.org/x/image/draw),
//     always present and always last
//
// For each request the generator validates both paths, inspects the source
// with [Generator.Describe], computes the target size with [CalculateSize]
// and short-circuits when an existing thumbnail already has that size.
// Otherwise it walks the backends. A backend that cannot handle the format,
// or whose estimated pixel buffer exceeds the memory budget, is skipped; one
// that fails while writing restores the previous thumbnail through its
// [BackupHandle] before the next backend runs. When every backend has failed
// the caller gets a [*FatalError] wrapping [ErrBackendsExhausted].
//
// Formats only libvips understands (HEIF/HEIC, AVIF) therefore fail
// outright when libvips is unavailable. JPEG, PNG, GIF, TIFF, BMP and WebP
// are always handled by the built-in backend. While the heap is above the
// memory monitor's critical watermark every backend is skipped.
package media
