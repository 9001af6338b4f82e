package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"testing"

	_ "golang.org/x/image/tiff"

	"github.com/user/framereader/pkg/ports"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return img
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		format  ports.ImageFormat
		quality int
	}{
		{"jpeg", ports.FormatJPEG, 80},
		{"jpeg default quality", ports.FormatJPEG, 0},
		{"png", ports.FormatPNG, 0},
		{"tiff", ports.FormatTIFF, 0},
	}

	r := New()
	img := solid(50, 30, color.NRGBA{R: 255, A: 255})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.EncodeImage(img, tt.format, tt.quality)
			if err != nil {
				t.Fatalf("EncodeImage failed: %v", err)
			}
			if len(data) == 0 {
				t.Fatal("expected non-empty data")
			}

			decoded := decode(t, data)
			bounds := decoded.Bounds()
			if bounds.Dx() != 50 || bounds.Dy() != 30 {
				t.Errorf("expected 50x30, got %dx%d", bounds.Dx(), bounds.Dy())
			}
			red, _, _, _ := decoded.At(25, 15).RGBA()
			if red < 0xf000 {
				t.Errorf("expected red pixel, got R=%#x", red)
			}
		})
	}
}

func TestRenderer_TIFFKeepsSixteenBits(t *testing.T) {
	r := New()

	img := image.NewNRGBA64(image.Rect(0, 0, 4, 4))
	img.SetNRGBA64(1, 1, color.NRGBA64{R: 0x1234, G: 0x5678, B: 0x9abc, A: 0xffff})

	data, err := r.EncodeImage(img, ports.FormatTIFF, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded := decode(t, data)

	got := color.NRGBA64Model.Convert(decoded.At(1, 1)).(color.NRGBA64)
	if got.R != 0x1234 || got.G != 0x5678 || got.B != 0x9abc {
		t.Errorf("expected 16-bit components preserved, got %+v", got)
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(solid(2, 2, color.Black), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	for _, r := range []*Renderer{New(), NewFast()} {
		resized := r.ResizeImage(solid(100, 100, color.White), 50, 25)

		bounds := resized.Bounds()
		if bounds.Dx() != 50 || bounds.Dy() != 25 {
			t.Errorf("expected 50x25, got %dx%d", bounds.Dx(), bounds.Dy())
		}
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRect(10, 10, 30, 30, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()
	_, green, _, _ := img.At(20, 20).RGBA()
	if green != 0 {
		t.Error("expected red pixel inside rectangle")
	}
	_, green, _, _ = img.At(60, 60).RGBA()
	if green == 0 {
		t.Error("expected white pixel outside rectangle")
	}
}

func TestCanvas_DrawRectStroke(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRectStroke(10, 10, 30, 30, color.Black, 2)

	img := canvas.ToImage()
	red, _, _, _ := img.At(10, 20).RGBA()
	if red == 0xffff {
		t.Error("expected dark pixel on border")
	}
	red, _, _, _ = img.At(25, 25).RGBA()
	if red != 0xffff {
		t.Error("expected untouched pixel inside outline")
	}
}

func TestCanvas_DrawImage(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawImage(solid(20, 20, color.NRGBA{R: 255, A: 255}), 10, 10)

	img := canvas.ToImage()
	_, green, _, _ := img.At(15, 15).RGBA()
	if green != 0 {
		t.Error("expected red pixel from drawn image")
	}
}

func TestCanvas_DrawRectBlends(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(20, 20, color.White)

	canvas.DrawRect(5, 5, 10, 10, color.NRGBA{A: 128})

	img := canvas.ToImage()
	red, _, _, _ := img.At(10, 10).RGBA()
	if red < 0x6000 || red > 0xa000 {
		t.Errorf("expected half-covered white, got R=%#x", red)
	}
	red, _, _, _ = img.At(2, 2).RGBA()
	if red != 0xffff {
		t.Error("expected white pixel outside the plate")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)

	style := ports.TextStyle{
		FontSize: 14,
		Color:    color.Black,
		Align:    ports.AlignCenter,
	}

	w, h := canvas.MeasureText("Frame 12", style)
	if w <= 0 || h <= 0 {
		t.Errorf("expected positive text size, got %.1fx%.1f", w, h)
	}

	canvas.DrawText("Frame 12", 100, 25, style)

	// A missing font file falls back to the built-in face.
	style.FontPath = "/nonexistent/font.ttf"
	canvas.DrawText("Frame 13", 100, 25, style)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ports.ImageFormat
	}{
		{"out/frame.png", ports.FormatPNG},
		{"frame.JPG", ports.FormatJPEG},
		{"frame.jpeg", ports.FormatJPEG},
		{"frame.tif", ports.FormatTIFF},
		{"frame.tiff", ports.FormatTIFF},
		{"frame", ports.FormatPNG},
	}

	for _, tt := range tests {
		if got := ports.FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
