package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/framereader/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// Canvases it creates are kept for inspection.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	canvases []*Canvas
	encoded  []ports.ImageFormat
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{Width: width, Height: height, Background: bg}
	m.mu.Lock()
	m.canvases = append(m.canvases, c)
	m.mu.Unlock()
	return c
}

// EncodeImage returns the image's tag as a one-byte payload unless
// EncodeImageFunc is set.
func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	m.mu.Lock()
	m.encoded = append(m.encoded, format)
	m.mu.Unlock()
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	if rgba, ok := img.(*image.NRGBA); ok && len(rgba.Pix) >= 2 {
		return []byte{rgba.Pix[0], rgba.Pix[1]}, nil
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Canvases returns the canvases created so far.
func (m *Renderer) Canvases() []*Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Canvas(nil), m.canvases...)
}

// Encoded returns the format of every EncodeImage call.
func (m *Renderer) Encoded() []ports.ImageFormat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.ImageFormat(nil), m.encoded...)
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawCall records one image drawn on a Canvas.
type DrawCall struct {
	Image image.Image
	Rect  image.Rectangle
}

// TextCall records one string drawn on a Canvas.
type TextCall struct {
	Text string
	X, Y int
}

// Canvas is a mock implementation of ports.Canvas that records draw calls.
type Canvas struct {
	Width      int
	Height     int
	Background color.Color

	mu      sync.Mutex
	images  []DrawCall
	texts   []TextCall
	strokes []image.Rectangle
	fills   []image.Rectangle
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, DrawCall{Image: img, Rect: image.Rect(x, y, x+b.Dx(), y+b.Dy())})
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills = append(m.fills, image.Rect(x, y, x+w, y+h))
}

func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strokes = append(m.strokes, image.Rect(x, y, x+w, y+h))
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, TextCall{Text: text, X: x, Y: y})
}

// MeasureText gives every rune 0.6 of the font size in width.
func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len(text)) * style.FontSize * 0.6, style.FontSize
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

// Images returns the recorded image draws.
func (m *Canvas) Images() []DrawCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DrawCall(nil), m.images...)
}

// Texts returns the recorded text draws.
func (m *Canvas) Texts() []TextCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TextCall(nil), m.texts...)
}

// Fills returns the recorded filled rectangles.
func (m *Canvas) Fills() []image.Rectangle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Rectangle(nil), m.fills...)
}

// Strokes returns the recorded rectangle outlines.
func (m *Canvas) Strokes() []image.Rectangle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Rectangle(nil), m.strokes...)
}

var _ ports.Canvas = (*Canvas)(nil)
