// Package formats identifies image files by their content.
//
// File names and client-supplied types are never trusted. Resolve sniffs the
// leading bytes of a file with github.com/gabriel-vasile/mimetype and maps
// the result onto a static table of canonical formats:
//
//	mime, err := formats.Resolve("/gallery/cats/tom.jpg")
//	if errors.Is(err, formats.ErrUnsupportedFormat) {
//	    // not an image we know about
//	}
//
// Every table entry carries a short tag, the preferred extension and the
// accepted aliases. Entries marked Resizable may be handed to a thumbnail
// backend; the rest (SVG, ICO, JPEG XL, Photoshop and camera RAW files) are
// recognised only so CorrectExtension can fix their names.
//
// CorrectExtension is side-effect free apart from logging: it computes the
// corrected path and leaves renaming to the caller.
package formats
