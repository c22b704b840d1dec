package formats

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func sampleImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return img
}

func encoded(t *testing.T, kind string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch kind {
	case "png":
		err = png.Encode(&buf, sampleImage())
	case "jpeg":
		err = jpeg.Encode(&buf, sampleImage(), nil)
	case "gif":
		err = gif.Encode(&buf, sampleImage(), nil)
	default:
		t.Fatalf("unknown kind %q", kind)
	}
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// padded appends binary filler so text detectors do not claim the sample.
func padded(header string) []byte {
	return append([]byte(header), make([]byte, 64)...)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "PNG", file: "a.png", data: encoded(t, "png"), want: MIMEPNG},
		{name: "JPEG", file: "b.jpg", data: encoded(t, "jpeg"), want: MIMEJPEG},
		{name: "GIF", file: "c.gif", data: encoded(t, "gif"), want: MIMEGIF},
		{name: "PNG ignores misleading name", file: "d.gif", data: encoded(t, "png"), want: MIMEPNG},
		{name: "Canon CR2", file: "e.cr2", data: padded("II*\x00\x10\x00\x00\x00CR\x02\x00"), want: MIMECR2},
		{name: "Olympus ORF", file: "f.orf", data: padded("IIRO\x08\x00\x00\x00"), want: MIMEORF},
		{name: "Panasonic RW2", file: "g.rw2", data: padded("IIU\x00\x08\x00\x00\x00"), want: MIMERW2},
		{name: "Fujifilm RAF", file: "h.raf", data: padded("FUJIFILMCCD-RAW 0201FF393"), want: MIMERAF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)
			got, err := Resolve(path)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Resolve(filepath.Join(dir, "missing.png")); !errors.Is(err, ErrNotReadable) {
		t.Errorf("missing file: err = %v, want ErrNotReadable", err)
	}

	text := writeFile(t, dir, "notes.jpg", []byte("just some text, not an image\n"))
	if _, err := Resolve(text); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("text file: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCorrectExtension(t *testing.T) {
	dir := t.TempDir()
	png := encoded(t, "png")
	jpg := encoded(t, "jpeg")

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "matching extension unchanged", file: "photo.png", data: png, want: "photo.png"},
		{name: "alias accepted", file: "photo.jpeg", data: jpg, want: "photo.jpeg"},
		{name: "case insensitive", file: "PHOTO.JPG", data: jpg, want: "PHOTO.JPG"},
		{name: "PNG named jpg", file: "photo.jpg", data: png, want: "photo.png"},
		{name: "missing extension appended", file: "upload", data: jpg, want: "upload.jpg"},
		{name: "unknown extension kept", file: "scan.bin", data: png, want: "scan.bin.png"},
		{name: "RAW named jpg", file: "raw.jpg", data: padded("IIU\x00\x08\x00\x00\x00"), want: "raw.rw2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)
			got, err := CorrectExtension(path)
			if err != nil {
				t.Fatalf("CorrectExtension() error = %v", err)
			}
			if want := filepath.Join(dir, tt.want); got != want {
				t.Errorf("CorrectExtension() = %q, want %q", got, want)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("source file touched: %v", err)
			}
		})
	}
}

func TestTable(t *testing.T) {
	entries := Table()
	if len(entries) != len(table) {
		t.Fatalf("Table() returned %d entries, want %d", len(entries), len(table))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Tag > entries[i].Tag {
			t.Errorf("Table() not sorted at %d: %q > %q", i, entries[i-1].Tag, entries[i].Tag)
		}
	}

	entries[0].Aliases = append(entries[0].Aliases, ".mutated")
	if f, _ := Lookup(entries[0].MIME); f.MatchesExtension(".mutated") {
		t.Error("Table() exposes shared alias slices")
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("IMAGE/JPEG")
	if !ok || f.Tag != "jpeg" || !f.Resizable {
		t.Errorf("Lookup(IMAGE/JPEG) = %+v, %v", f, ok)
	}
	if f, ok := Lookup(MIMESVG); !ok || f.Resizable {
		t.Errorf("SVG should be known but not resizable, got %+v, %v", f, ok)
	}
	if _, ok := Lookup("application/pdf"); ok {
		t.Error("Lookup(application/pdf) should fail")
	}
}

func TestIsImageExtension(t *testing.T) {
	for _, ext := range []string{".jpg", ".JPEG", ".tif", ".cr2", ".heic"} {
		if !IsImageExtension(ext) {
			t.Errorf("IsImageExtension(%q) = false", ext)
		}
	}
	for _, ext := range []string{"", ".txt", ".bin", "jpg"} {
		if IsImageExtension(ext) {
			t.Errorf("IsImageExtension(%q) = true", ext)
		}
	}
}
