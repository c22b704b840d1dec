package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/formats"
	"photo-gallery/internal/memory"
)

// BuiltinName identifies the backend that is always registered last.
const BuiltinName = "builtin"

// NewBuiltinBackend returns the last-resort backend. It only uses pure Go
// codecs, so it is available everywhere. WebP is decoded by
// golang.org/x/image/webp and re-encoded losslessly by nativewebp. HEIC,
// HEIF and AVIF have no pure Go codec and stay libvips-only.
func NewBuiltinBackend(budget memory.Budget) Backend {
	return &pipeline{
		name:          BuiltinName,
		bytesPerPixel: memory.DefaultBytesPerPixel,
		budget:        budget,
		formats: map[string]string{
			formats.MIMEJPEG: "jpeg",
			formats.MIMEPNG:  "png",
			formats.MIMEGIF:  "gif",
			formats.MIMETIFF: "tiff",
			formats.MIMEBMP:  "bmp",
			formats.MIMEWebP: "webp",
		},
		compiledIn: builtinCanDecode,
		encode:     builtinEncode,
	}
}

// builtinCanDecode checks that a registered image decoder recognises the
// source under the expected name.
func builtinCanDecode(src ImageDescriptor, tag string) bool {
	if src.Path == "" {
		return true
	}
	_, name, err := decodeConfig(src.Path)
	return err == nil && name == tag
}

func builtinEncode(src ImageDescriptor, target ThumbnailTarget, tag string) ([]byte, error) {
	file, err := filesystem.OpenWithRetry(src.Path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	img, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	switch tag {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(&buf, dst)
	case "gif":
		opts := &gif.Options{NumColors: 256}
		if palette, ok := gifPalette(src.Path); ok {
			opts.Quantizer = fixedPalette(palette)
		}
		err = gif.Encode(&buf, dst, opts)
	case "tiff":
		err = tiff.Encode(&buf, dst, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "bmp":
		err = bmp.Encode(&buf, dst)
	case "webp":
		err = nativewebp.Encode(&buf, dst, nil)
	default:
		err = fmt.Errorf("no encoder for %s", tag)
	}
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
