package media

import (
	"bytes"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/memory"
)

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeSuccess:           "success",
		OutcomeUnsupportedFormat: "unsupported_format",
		OutcomeMemoryExceeded:    "memory_exceeded",
		OutcomeEncodingFailure:   "encoding_failure",
		Outcome(42):              "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}

func TestBackends_ResizeFormats(t *testing.T) {
	dir := t.TempDir()
	unlimited := memory.NewBudget(0)

	sources := []struct {
		name  string
		mime  string
		write func(testing.TB, string, int, int)
	}{
		{"jpeg", formats.MIMEJPEG, writeJPEG},
		{"png", formats.MIMEPNG, writePNG},
		{"gif", formats.MIMEGIF, writeGIF},
		{"bmp", formats.MIMEBMP, func(t testing.TB, p string, w, h int) {
			writeEncoded(t, p, func(f *os.File) error { return bmp.Encode(f, gradient(w, h, false)) })
		}},
		{"tiff", formats.MIMETIFF, func(t testing.TB, p string, w, h int) {
			writeEncoded(t, p, func(f *os.File) error { return tiff.Encode(f, gradient(w, h, true), nil) })
		}},
	}

	backends := []Backend{NewImagingBackend(unlimited), NewBuiltinBackend(unlimited)}

	for _, b := range backends {
		for _, src := range sources {
			t.Run(b.Name()+"/"+src.name, func(t *testing.T) {
				srcPath := filepath.Join(dir, b.Name(), "src."+src.name)
				src.write(t, srcPath, 200, 100)

				if !b.Supports(src.mime) {
					t.Fatalf("%s should support %s", b.Name(), src.mime)
				}

				target := ThumbnailTarget{Path: filepath.Join(dir, b.Name(), "thumb."+src.name), Width: 50, Height: 25}
				desc := ImageDescriptor{Path: srcPath, MIME: src.mime, Width: 200, Height: 100}

				if res := b.Resize(desc, target); res.Outcome != OutcomeSuccess {
					t.Fatalf("Resize() = %s: %v", res.Outcome, res.Err)
				}
				if w, h := dimensionsOf(t, target.Path); w != 50 || h != 25 {
					t.Errorf("thumbnail is %dx%d, want 50x25", w, h)
				}
				// The thumbnail keeps the source format.
				if mime, err := formats.Resolve(target.Path); err != nil || mime != src.mime {
					t.Errorf("thumbnail format = %q, %v; want %q", mime, err, src.mime)
				}
			})
		}
	}
}

func TestBackends_PreserveTransparency(t *testing.T) {
	dir := t.TempDir()
	unlimited := memory.NewBudget(0)

	for _, b := range []Backend{NewImagingBackend(unlimited), NewBuiltinBackend(unlimited)} {
		t.Run(b.Name()+"/png", func(t *testing.T) {
			srcPath := filepath.Join(dir, b.Name()+"-alpha.png")
			writePNG(t, srcPath, 200, 100)
			target := ThumbnailTarget{Path: filepath.Join(dir, b.Name()+"-alpha-thumb.png"), Width: 100, Height: 50}

			res := b.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 200, Height: 100}, target)
			if res.Outcome != OutcomeSuccess {
				t.Fatalf("Resize() = %s: %v", res.Outcome, res.Err)
			}

			img, err := png.Decode(bytes.NewReader(readFile(t, target.Path)))
			if err != nil {
				t.Fatal(err)
			}
			assertTransparentAt(t, img, 0, 25)
			assertOpaqueAt(t, img, 90, 25)
		})

		t.Run(b.Name()+"/gif", func(t *testing.T) {
			srcPath := filepath.Join(dir, b.Name()+"-alpha.gif")
			writeGIF(t, srcPath, 200, 100)
			target := ThumbnailTarget{Path: filepath.Join(dir, b.Name()+"-alpha-thumb.gif"), Width: 100, Height: 50}

			res := b.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEGIF, Width: 200, Height: 100}, target)
			if res.Outcome != OutcomeSuccess {
				t.Fatalf("Resize() = %s: %v", res.Outcome, res.Err)
			}

			img, err := gif.Decode(bytes.NewReader(readFile(t, target.Path)))
			if err != nil {
				t.Fatal(err)
			}
			assertTransparentAt(t, img, 0, 25)
			assertOpaqueAt(t, img, 90, 25)
		})
	}
}

func assertTransparentAt(t *testing.T, img image.Image, x, y int) {
	t.Helper()
	if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
		t.Errorf("pixel (%d,%d) alpha = %d, want transparent", x, y, a)
	}
}

func assertOpaqueAt(t *testing.T, img image.Image, x, y int) {
	t.Helper()
	if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
		t.Errorf("pixel (%d,%d) alpha = %d, want opaque", x, y, a)
	}
}

func TestPipeline_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	b := NewBuiltinBackend(memory.NewBudget(0))

	if !b.Supports(formats.MIMEWebP) {
		t.Error("builtin should claim WebP")
	}
	for _, mime := range []string{formats.MIMEHEIC, formats.MIMEAVIF} {
		if b.Supports(mime) {
			t.Errorf("builtin should not claim %s", mime)
		}
	}

	// Content that does not match the claimed MIME fails the decoder check.
	srcPath := filepath.Join(dir, "really-a-jpeg.png")
	writeJPEG(t, srcPath, 40, 40)
	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 20, Height: 20}

	res := b.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 40, Height: 40}, target)
	if res.Outcome != OutcomeUnsupportedFormat {
		t.Errorf("Resize() = %s, want unsupported_format", res.Outcome)
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Error("unsupported attempt wrote a file")
	}
}

func TestPipeline_MemoryExceeded(t *testing.T) {
	dir := t.TempDir()
	// 1000 byte ceiling: 250 byte budget, below 10×10×3.
	b := NewBuiltinBackend(memory.NewBudget(1000))

	if got := b.EstimateMemory(10, 10); got != 300 {
		t.Errorf("EstimateMemory(10, 10) = %d, want 300", got)
	}

	srcPath := filepath.Join(dir, "src.png")
	writePNG(t, srcPath, 10, 10)
	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 5, Height: 5}

	res := b.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 10, Height: 10}, target)
	if res.Outcome != OutcomeMemoryExceeded {
		t.Fatalf("Resize() = %s, want memory_exceeded", res.Outcome)
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Error("rejected attempt wrote a file")
	}
}

func TestPipeline_RefusesUnderHeapPressure(t *testing.T) {
	dir := t.TempDir()
	// A one byte ceiling puts any live heap over the critical watermark.
	monitor := memory.NewMonitor(1, memory.DefaultMonitorConfig())
	monitor.Start()
	defer monitor.Stop()
	budget := memory.NewBudget(0).WithMonitor(monitor)

	srcPath := filepath.Join(dir, "src.png")
	writePNG(t, srcPath, 10, 10)
	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 5, Height: 5}
	desc := ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 10, Height: 10}

	for _, b := range []Backend{NewImagingBackend(budget), NewBuiltinBackend(budget)} {
		if res := b.Resize(desc, target); res.Outcome != OutcomeMemoryExceeded {
			t.Errorf("%s: Resize() = %s, want memory_exceeded", b.Name(), res.Outcome)
		}
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Error("refused attempt wrote a file")
	}
}

func TestImagingEstimatesFourBytesPerPixel(t *testing.T) {
	b := NewImagingBackend(memory.NewBudget(0))
	if got := b.EstimateMemory(100, 100); got != 40_000 {
		t.Errorf("EstimateMemory(100, 100) = %d, want 40000", got)
	}
}

func TestPipeline_FailureRestoresPreviousThumbnail(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.png")
	writePNG(t, srcPath, 40, 40)

	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 20, Height: 20, Existed: true}
	previous := []byte("previous thumbnail bytes")
	if err := os.WriteFile(target.Path, previous, 0o644); err != nil {
		t.Fatal(err)
	}

	res := brokenBackend(formats.MIMEPNG).Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 40, Height: 40}, target)
	if res.Outcome != OutcomeEncodingFailure {
		t.Fatalf("Resize() = %s, want encoding_failure", res.Outcome)
	}
	if got := readFile(t, target.Path); !bytes.Equal(got, previous) {
		t.Errorf("thumbnail changed to %q", got)
	}
	noBackups(t, dir)
}

func TestPipeline_WrongDimensionsRejected(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.png")
	writePNG(t, srcPath, 40, 40)

	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 20, Height: 20}
	previous := []byte("kept")
	if err := os.WriteFile(target.Path, previous, 0o644); err != nil {
		t.Fatal(err)
	}

	sloppy := &pipeline{
		name:          "sloppy",
		bytesPerPixel: 3,
		budget:        memory.NewBudget(0),
		formats:       map[string]string{formats.MIMEPNG: "png"},
		encode: func(ImageDescriptor, ThumbnailTarget, string) ([]byte, error) {
			var buf bytes.Buffer
			err := png.Encode(&buf, gradient(21, 20, false))
			return buf.Bytes(), err
		},
	}

	res := sloppy.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 40, Height: 40}, target)
	if res.Outcome != OutcomeEncodingFailure {
		t.Fatalf("Resize() = %s, want encoding_failure", res.Outcome)
	}
	if got := readFile(t, target.Path); !bytes.Equal(got, previous) {
		t.Errorf("mismatched thumbnail was kept: %q", got)
	}
	noBackups(t, dir)
}

func TestPipeline_FailureWithoutPreviousLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.png")
	writePNG(t, srcPath, 40, 40)
	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.png"), Width: 20, Height: 20}

	res := brokenBackend(formats.MIMEPNG).Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEPNG, Width: 40, Height: 40}, target)
	if res.Outcome != OutcomeEncodingFailure {
		t.Fatalf("Resize() = %s, want encoding_failure", res.Outcome)
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Error("failed attempt left a file behind")
	}
}

func TestPipeline_SuccessDiscardsBackup(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.jpg")
	writeJPEG(t, srcPath, 80, 60)

	target := ThumbnailTarget{Path: filepath.Join(dir, "thumb.jpg"), Width: 40, Height: 30, Existed: true}
	if err := os.WriteFile(target.Path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuiltinBackend(memory.NewBudget(0))
	if res := b.Resize(ImageDescriptor{Path: srcPath, MIME: formats.MIMEJPEG, Width: 80, Height: 60}, target); res.Outcome != OutcomeSuccess {
		t.Fatalf("Resize() = %s: %v", res.Outcome, res.Err)
	}
	if w, h := dimensionsOf(t, target.Path); w != 40 || h != 30 {
		t.Errorf("thumbnail is %dx%d", w, h)
	}
	noBackups(t, dir)
}
