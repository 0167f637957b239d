package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"  // register GIF decoder
	_ "image/png"  // register PNG decoder

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxEdge bounds the longer edge of a normalized image.
	MaxEdge = 1024
	// Quality is the JPEG re-encode quality on the 0-100 scale.
	Quality = 70
)

// ErrNotAnImage is returned when the payload cannot be decoded as a raster image.
var ErrNotAnImage = fmt.Errorf("payload is not a decodable image")

// Result describes a normalized image.
type Result struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Normalize decodes an arbitrary raster image, scales it so its longer
// edge does not exceed MaxEdge while preserving aspect ratio, and
// re-encodes it as JPEG at Quality. Images already within bounds keep
// their dimensions but are still re-encoded.
func Normalize(data []byte) (Result, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return Result{}, ErrNotAnImage
	}

	outW, outH := FitWithin(width, height, MaxEdge)

	var out image.Image = src
	if outW != width || outH != height {
		dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: Quality}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Result{
		Data:     buf.Bytes(),
		Width:    outW,
		Height:   outH,
		MimeType: "image/jpeg",
	}, nil
}

// FitWithin returns the dimensions scaled so the longer edge equals max
// when either exceeds it. The scale factor comes from whichever
// dimension is larger, so aspect ratio is preserved.
func FitWithin(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width > height {
		scaled := int(float64(height)*float64(max)/float64(width) + 0.5)
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}
	scaled := int(float64(width)*float64(max)/float64(height) + 0.5)
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}
