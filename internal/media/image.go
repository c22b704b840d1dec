package media

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"

	// Decoders for dimension probing and the built-in backend
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// probeDimensions reads width and height without decoding pixels. Formats Go
// cannot read (HEIF, AVIF) are asked of libvips when it is running.
func probeDimensions(path string) (int, int, error) {
	config, _, err := decodeConfig(path)
	if err == nil {
		return config.Width, config.Height, nil
	}

	if IsVipsAvailable() {
		w, h, vipsErr := vipsDimensions(path)
		if vipsErr == nil {
			return w, h, nil
		}
		logging.Debug("libvips could not read dimensions of %s: %v", path, vipsErr)
	}
	return 0, 0, fmt.Errorf("read dimensions of %s: %w", path, err)
}

// decodeConfig reads the image header and the name of the decoder that
// recognised it.
func decodeConfig(path string) (image.Config, string, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return image.Config{}, "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	return image.DecodeConfig(file)
}

// gifPalette returns the palette of the first frame of a GIF file. The
// header alone is not enough: the transparent index lives in the frame's
// graphic control extension.
func gifPalette(path string) (color.Palette, bool) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, false
	}
	defer file.Close()

	img, err := gif.Decode(file)
	if err != nil {
		return nil, false
	}
	paletted, ok := img.(*image.Paletted)
	if !ok || len(paletted.Palette) == 0 {
		return nil, false
	}
	return paletted.Palette, true
}

// fixedPalette is a draw.Quantizer that always answers with the source
// palette, so scaled GIFs keep their colours and transparency.
type fixedPalette color.Palette

func (q fixedPalette) Quantize(p color.Palette, _ image.Image) color.Palette {
	n := min(len(q), cap(p)-len(p))
	return append(p, q[:n]...)
}
