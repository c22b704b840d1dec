// Command fixext renames gallery files whose extension does not match their
// content.
//
// Usage:
//
//	fixext [--apply] [--yes] [--workers N] [--verbose] <dir>
//
// The tree under dir is walked (hidden entries excluded) and every file is
// sniffed by content. Files that are not a supported image are skipped. A
// JPEG named photo.png becomes photo.jpg; a raw file with an extension that
// is not an image extension keeps it and gains the correct one
// (IMG_0001.bak becomes IMG_0001.bak.cr2).
//
// Without --apply the planned renames are only printed. With --apply the
// user is asked to confirm on a terminal; --yes is required when stdin or
// stdout is not a terminal. A rename whose target already exists is
// reported and skipped.
//
// GALLERY_WORKERS overrides the default number of parallel sniffers.
package main
