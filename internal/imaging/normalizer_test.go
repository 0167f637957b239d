package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 16 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode normalized output as jpeg: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestNormalizeDownscalesWideImage(t *testing.T) {
	res, err := Normalize(encodePNG(t, 2048, 1000))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Width != 1024 {
		t.Fatalf("expected longer edge 1024, got %d", res.Width)
	}
	// 1000 * 1024/2048 = 500
	if res.Height != 500 {
		t.Fatalf("expected height 500, got %d", res.Height)
	}
	w, h := decodeDims(t, res.Data)
	if w != res.Width || h != res.Height {
		t.Fatalf("encoded dims %dx%d do not match reported %dx%d", w, h, res.Width, res.Height)
	}
}

func TestNormalizeDownscalesTallImage(t *testing.T) {
	res, err := Normalize(encodePNG(t, 600, 3000))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Height != 1024 {
		t.Fatalf("expected longer edge 1024, got %d", res.Height)
	}
	// 600 * 1024/3000 = 204.8 -> 205
	if res.Width != 205 {
		t.Fatalf("expected width 205, got %d", res.Width)
	}
}

func TestNormalizeKeepsSmallImageDimensions(t *testing.T) {
	res, err := Normalize(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Width != 640 || res.Height != 480 {
		t.Fatalf("expected 640x480 pass-through, got %dx%d", res.Width, res.Height)
	}
	if res.MimeType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", res.MimeType)
	}
	// Still re-encoded: output must be JPEG even though input was PNG.
	decodeDims(t, res.Data)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image")); err == nil {
		t.Fatalf("expected error for undecodable payload")
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		wantW, wantH   int
	}{
		{name: "both within", w: 800, h: 600, wantW: 800, wantH: 600},
		{name: "exact bound", w: 1024, h: 1024, wantW: 1024, wantH: 1024},
		{name: "wide", w: 4096, h: 1024, wantW: 1024, wantH: 256},
		{name: "tall", w: 1024, h: 4096, wantW: 256, wantH: 1024},
		{name: "square oversize", w: 2000, h: 2000, wantW: 1024, wantH: 1024},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := FitWithin(tt.w, tt.h, 1024)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Fatalf("FitWithin(%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}
