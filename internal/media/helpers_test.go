package media

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"

	"photo-gallery/internal/memory"
)

// gradient returns a w×h test image. With alpha the left column is fully
// transparent.
func gradient(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255}
			if alpha && x < w/4 {
				c = color.NRGBA{}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeJPEG(t testing.TB, path string, w, h int) {
	t.Helper()
	writeEncoded(t, path, func(f *os.File) error {
		return jpeg.Encode(f, gradient(w, h, false), &jpeg.Options{Quality: 90})
	})
}

func writeWebP(t testing.TB, path string, w, h int) {
	t.Helper()
	writeEncoded(t, path, func(f *os.File) error {
		return nativewebp.Encode(f, gradient(w, h, true), nil)
	})
}

func writePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	writeEncoded(t, path, func(f *os.File) error {
		return png.Encode(f, gradient(w, h, true))
	})
}

// writeGIF writes a two-colour paletted GIF whose left quarter uses the
// transparent index 0.
func writeGIF(t testing.TB, path string, w, h int) {
	t.Helper()
	palette := color.Palette{color.NRGBA{}, color.NRGBA{R: 200, G: 40, B: 40, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	for y := 0; y < h; y++ {
		for x := w / 4; x < w; x++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	writeEncoded(t, path, func(f *os.File) error {
		return gif.Encode(f, img, nil)
	})
}

func writeEncoded(t testing.TB, path string, encode func(*os.File) error) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func dimensionsOf(t *testing.T, path string) (int, int) {
	t.Helper()
	w, h, err := probeDimensions(path)
	if err != nil {
		t.Fatalf("probe %s: %v", path, err)
	}
	return w, h
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// noBackups fails when a backup file was left next to the thumbnails.
func noBackups(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.bak"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("stray backups left behind: %v", matches)
	}
}

// fakeBackend accepts everything and reports a fixed outcome without
// touching the filesystem.
type fakeBackend struct {
	name    string
	outcome Outcome
	calls   int
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Supports(string) bool { return true }
func (f *fakeBackend) EstimateMemory(_, _ int) int64 { return 0 }

func (f *fakeBackend) Resize(ImageDescriptor, ThumbnailTarget) Result {
	f.calls++
	return Result{Outcome: f.outcome, Err: errors.New("forced " + f.outcome.String())}
}

// brokenBackend goes through the shared pipeline but fails while encoding,
// after any existing thumbnail has been backed up.
func brokenBackend(mime string) *pipeline {
	return &pipeline{
		name:          "broken",
		bytesPerPixel: memory.DefaultBytesPerPixel,
		budget:        memory.NewBudget(0),
		formats:       map[string]string{mime: "any"},
		encode: func(ImageDescriptor, ThumbnailTarget, string) ([]byte, error) {
			return nil, errors.New("encoder crashed")
		},
	}
}
