package formats

import (
	"sort"
	"strings"
)

// Format describes one canonical image format.
type Format struct {
	MIME      string   `json:"mime"`
	Tag       string   `json:"tag"`
	Extension string   `json:"extension"`
	Aliases   []string `json:"aliases,omitempty"`
	Resizable bool     `json:"resizable"`
}

// Canonical MIME types. The RAW types are registered with mimetype in init.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
	MIMEWebP = "image/webp"
	MIMETIFF = "image/tiff"
	MIMEBMP  = "image/bmp"
	MIMESVG  = "image/svg+xml"
	MIMEICO  = "image/x-icon"
	MIMEAVIF = "image/avif"
	MIMEHEIC = "image/heic"
	MIMEHEIF = "image/heif"
	MIMEJXL  = "image/jxl"
	MIMEPSD  = "image/vnd.adobe.photoshop"
	MIMECR2  = "image/x-canon-cr2"
	MIMEORF  = "image/x-olympus-orf"
	MIMERW2  = "image/x-panasonic-rw2"
	MIMERAF  = "image/x-fujifilm-raf"
)

var table = map[string]Format{
	MIMEJPEG: {MIME: MIMEJPEG, Tag: "jpeg", Extension: ".jpg", Aliases: []string{".jpeg", ".jpe", ".jfif"}, Resizable: true},
	MIMEPNG:  {MIME: MIMEPNG, Tag: "png", Extension: ".png", Resizable: true},
	MIMEGIF:  {MIME: MIMEGIF, Tag: "gif", Extension: ".gif", Resizable: true},
	MIMEWebP: {MIME: MIMEWebP, Tag: "webp", Extension: ".webp", Resizable: true},
	MIMETIFF: {MIME: MIMETIFF, Tag: "tiff", Extension: ".tiff", Aliases: []string{".tif"}, Resizable: true},
	MIMEBMP:  {MIME: MIMEBMP, Tag: "bmp", Extension: ".bmp", Aliases: []string{".dib"}, Resizable: true},
	MIMEAVIF: {MIME: MIMEAVIF, Tag: "avif", Extension: ".avif", Resizable: true},
	MIMEHEIC: {MIME: MIMEHEIC, Tag: "heic", Extension: ".heic", Aliases: []string{".heif"}, Resizable: true},
	MIMEHEIF: {MIME: MIMEHEIF, Tag: "heif", Extension: ".heif", Aliases: []string{".heic"}, Resizable: true},
	MIMESVG:  {MIME: MIMESVG, Tag: "svg", Extension: ".svg"},
	MIMEICO:  {MIME: MIMEICO, Tag: "ico", Extension: ".ico"},
	MIMEJXL:  {MIME: MIMEJXL, Tag: "jxl", Extension: ".jxl"},
	MIMEPSD:  {MIME: MIMEPSD, Tag: "psd", Extension: ".psd"},
	MIMECR2:  {MIME: MIMECR2, Tag: "cr2", Extension: ".cr2"},
	MIMEORF:  {MIME: MIMEORF, Tag: "orf", Extension: ".orf"},
	MIMERW2:  {MIME: MIMERW2, Tag: "rw2", Extension: ".rw2"},
	MIMERAF:  {MIME: MIMERAF, Tag: "raf", Extension: ".raf"},
}

// knownExtensions holds every extension and alias in the table, lower case.
var knownExtensions = func() map[string]bool {
	m := make(map[string]bool)
	for _, f := range table {
		m[f.Extension] = true
		for _, a := range f.Aliases {
			m[a] = true
		}
	}
	return m
}()

// Lookup returns the table entry for a canonical MIME type.
func Lookup(mime string) (Format, bool) {
	f, ok := table[strings.ToLower(mime)]
	return f, ok
}

// Table returns a copy of the format table sorted by tag.
func Table() []Format {
	out := make([]Format, 0, len(table))
	for _, f := range table {
		f.Aliases = append([]string(nil), f.Aliases...)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// IsImageExtension reports whether ext (with leading dot) belongs to any
// known format.
func IsImageExtension(ext string) bool {
	return knownExtensions[strings.ToLower(ext)]
}

// MatchesExtension reports whether ext is the preferred extension or an
// accepted alias of f.
func (f Format) MatchesExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == f.Extension {
		return true
	}
	for _, a := range f.Aliases {
		if ext == a {
			return true
		}
	}
	return false
}
