package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// encodePNG renders a solid-color PNG of the given dimensions.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 0x3C, G: 0x78, B: 0xB4, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG fixture: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("Failed to encode JPEG fixture: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode GIF fixture: %v", err)
	}
	return buf.Bytes()
}

func TestIdentify_Dimensions(t *testing.T) {
	tests := []struct {
		name   string
		data   func(t *testing.T) []byte
		width  int
		height int
	}{
		{name: "png", data: func(t *testing.T) []byte { return encodePNG(t, 100, 50) }, width: 100, height: 50},
		{name: "jpeg", data: func(t *testing.T) []byte { return encodeJPEG(t, 64, 48) }, width: 64, height: 48},
		{name: "single pixel png", data: func(t *testing.T) []byte { return encodePNG(t, 1, 1) }, width: 1, height: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Identify(tt.data(t))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if w != tt.width || h != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, w, h)
			}
		})
	}
}

func TestIdentify_MalformedBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "text", data: []byte("definitely not an image")},
		{name: "truncated png header", data: []byte{0x89, 0x50, 0x4E, 0x47}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Identify(tt.data)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("Expected DecodeError, got %T: %v", err, err)
			}
		})
	}
}

func TestIdentify_GIFDecodes(t *testing.T) {
	// GIF is decodable here but rejected later at the naming gate;
	// Identify itself must not be the component that refuses it.
	w, h, err := Identify(encodeGIF(t, 10, 20))
	if err != nil {
		t.Fatalf("Expected GIF to decode, got %v", err)
	}
	if w != 10 || h != 20 {
		t.Errorf("Expected 10x20, got %dx%d", w, h)
	}
}
