package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"
)

var (
	placeholderMu    sync.Mutex
	placeholderCache = map[image.Point][]byte{}
)

var (
	placeholderBackground = color.NRGBA{R: 0xe4, G: 0xe4, B: 0xe7, A: 0xff}
	placeholderInk        = color.NRGBA{R: 0x9c, G: 0x9c, B: 0xa3, A: 0xff}
)

// Placeholder returns a PNG "no photo" image of the given size: a grey tile
// with a framed cross. Results are cached per size.
func Placeholder(width, height int) ([]byte, error) {
	width, height = max(width, 16), max(height, 16)
	key := image.Pt(width, height)

	placeholderMu.Lock()
	defer placeholderMu.Unlock()

	if data, ok := placeholderCache[key]; ok {
		return data, nil
	}

	img := imaging.New(width, height, placeholderBackground)

	inset := min(width, height) / 4
	stroke := max(min(width, height)/40, 1)
	frame := image.Rect(inset, inset, width-inset, height-inset)

	for y := frame.Min.Y; y < frame.Max.Y; y++ {
		for x := frame.Min.X; x < frame.Max.X; x++ {
			onEdge := x-frame.Min.X < stroke || frame.Max.X-x <= stroke ||
				y-frame.Min.Y < stroke || frame.Max.Y-y <= stroke
			if onEdge || onDiagonal(frame, x, y, stroke) {
				img.SetNRGBA(x, y, placeholderInk)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	placeholderCache[key] = buf.Bytes()
	return buf.Bytes(), nil
}

func onDiagonal(r image.Rectangle, x, y, stroke int) bool {
	w, h := r.Dx(), r.Dy()
	dx, dy := x-r.Min.X, y-r.Min.Y
	// Scale to the rectangle so both diagonals run corner to corner.
	a := dx*h - dy*w
	b := dx*h - (h-1-dy)*w
	limit := stroke * max(w, h)
	return abs(a) < limit || abs(b) < limit
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
