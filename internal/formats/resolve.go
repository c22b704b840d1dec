package formats

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
)

// Resolver errors.
var (
	ErrNotReadable       = errors.New("file not readable")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

func init() {
	// Canon CR2 is a TIFF container with "CR" at offset 8.
	mimetype.Lookup(MIMETIFF).Extend(func(raw []byte, _ uint32) bool {
		return len(raw) >= 10 && raw[8] == 'C' && raw[9] == 'R'
	}, MIMECR2, ".cr2")

	// The remaining RAW containers use their own byte-order marks, which the
	// TIFF detector rejects, so they hang off the root of the tree.
	root := mimetype.Lookup("application/octet-stream")
	root.Extend(func(raw []byte, _ uint32) bool {
		return bytes.HasPrefix(raw, []byte("IIRO")) ||
			bytes.HasPrefix(raw, []byte("IIRS")) ||
			bytes.HasPrefix(raw, []byte("MMOR"))
	}, MIMEORF, ".orf")
	root.Extend(func(raw []byte, _ uint32) bool {
		return bytes.HasPrefix(raw, []byte("IIU\x00"))
	}, MIMERW2, ".rw2")
	root.Extend(func(raw []byte, _ uint32) bool {
		return bytes.HasPrefix(raw, []byte("FUJIFILMCCD-RAW"))
	}, MIMERAF, ".raf")
}

// Resolve returns the canonical MIME type of the file at path, determined
// from its content alone.
func Resolve(path string) (string, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotReadable, path, err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotReadable, path, err)
	}

	for m := detected; m != nil; m = m.Parent() {
		if format, ok := Lookup(m.String()); ok {
			return format.MIME, nil
		}
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, detected.String())
}

// ResolveFormat is Resolve followed by Lookup.
func ResolveFormat(path string) (Format, error) {
	mime, err := Resolve(path)
	if err != nil {
		return Format{}, err
	}
	f, _ := Lookup(mime)
	return f, nil
}

// CorrectExtension returns path with the extension implied by its content.
// A path whose extension already matches (including aliases such as .jpeg)
// is returned unchanged. A known image extension is replaced; anything else
// is kept and the correct extension appended. The file is not renamed.
func CorrectExtension(path string) (string, error) {
	format, err := ResolveFormat(path)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	if format.MatchesExtension(ext) {
		return path, nil
	}

	corrected := path + format.Extension
	if IsImageExtension(ext) {
		corrected = strings.TrimSuffix(path, ext) + format.Extension
	}

	logging.Info("Extension corrected: %s -> %s (%s)", path, corrected, format.MIME)
	return corrected, nil
}
