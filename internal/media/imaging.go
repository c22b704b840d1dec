package media

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/memory"
)

// imaging converts everything to NRGBA, four bytes per pixel.
const imagingBytesPerPixel = 4

var imagingFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"tiff": imaging.TIFF,
	"bmp":  imaging.BMP,
}

// NewImagingBackend returns the pure Go backend built on
// github.com/disintegration/imaging.
func NewImagingBackend(budget memory.Budget) Backend {
	return &pipeline{
		name:          "imaging",
		bytesPerPixel: imagingBytesPerPixel,
		budget:        budget,
		formats: map[string]string{
			formats.MIMEJPEG: "jpeg",
			formats.MIMEPNG:  "png",
			formats.MIMEGIF:  "gif",
			formats.MIMETIFF: "tiff",
			formats.MIMEBMP:  "bmp",
		},
		compiledIn: func(_ ImageDescriptor, tag string) bool {
			f, err := imaging.FormatFromExtension(tag)
			return err == nil && f == imagingFormats[tag]
		},
		encode: imagingEncode,
	}
}

func imagingEncode(src ImageDescriptor, target ThumbnailTarget, tag string) ([]byte, error) {
	img, err := imaging.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("imaging failed to open image: %w", err)
	}

	thumb := imaging.Resize(img, target.Width, target.Height, imaging.Lanczos)

	opts := []imaging.EncodeOption{imaging.JPEGQuality(85)}
	if tag == "gif" {
		if palette, ok := gifPalette(src.Path); ok {
			opts = append(opts, imaging.GIFNumColors(256), imaging.GIFQuantizer(fixedPalette(palette)))
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imagingFormats[tag], opts...); err != nil {
		return nil, fmt.Errorf("imaging encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
