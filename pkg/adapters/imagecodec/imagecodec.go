// Package imagecodec provides intra-only decoders for streams whose samples are
// self-contained still images (Motion JPEG, PNG, TIFF, BMP, WebP, raw RGB).
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"sort"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/user/framereader/pkg/ports"
)

// Codec names.
const (
	CodecMJPEG    = "mjpeg"
	CodecPNG      = "png"
	CodecTIFF     = "tiff"
	CodecBMP      = "bmp"
	CodecWebP     = "webp"
	CodecRawVideo = "rawvideo"
)

var (
	// ErrDecodeFailed is returned when a sample cannot be decoded.
	ErrDecodeFailed = errors.New("imagecodec: decode failed")

	// ErrDecoderClosed is returned when a closed decoder is used.
	ErrDecoderClosed = errors.New("imagecodec: decoder closed")
)

type decodeFunc func(data []byte, stream ports.StreamInfo) (image.Image, error)

// Codec implements ports.Codec for one still-image format.
type Codec struct {
	name        string
	pixelFormat string
	decode      decodeFunc
}

// Name returns the codec name.
func (c *Codec) Name() string { return c.name }

// PixelFormat returns the pixel format decoded pictures are reported in.
func (c *Codec) PixelFormat() string { return c.pixelFormat }

// Capabilities reports an intra-only, zero-delay, single-threaded codec.
func (c *Codec) Capabilities() ports.CodecCapabilities {
	return ports.CodecCapabilities{IntraOnly: true}
}

// Open creates a decoder for stream.
func (c *Codec) Open(stream ports.StreamInfo, threads int) (ports.Decoder, error) {
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("imagecodec: %s stream %d has no dimensions", c.name, stream.Index)
	}
	return &Decoder{codec: c, stream: stream}, nil
}

// Registry implements ports.CodecRegistry over the built-in codecs.
type Registry struct {
	codecs map[string]*Codec
}

// NewRegistry creates a registry containing every built-in codec.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]*Codec)}
	for _, c := range []*Codec{
		{name: CodecMJPEG, pixelFormat: "yuvj420p", decode: decodeStd(jpeg.Decode)},
		{name: CodecPNG, pixelFormat: "rgba", decode: decodeStd(png.Decode)},
		{name: CodecTIFF, pixelFormat: "rgba", decode: decodeStd(tiff.Decode)},
		{name: CodecBMP, pixelFormat: "rgb24", decode: decodeStd(bmp.Decode)},
		{name: CodecWebP, pixelFormat: "yuv420p", decode: decodeStd(webp.Decode)},
		{name: CodecRawVideo, pixelFormat: "rgb24", decode: decodeRGB24},
	} {
		r.codecs[c.name] = c
	}
	return r
}

// Find returns the codec registered under name.
func (r *Registry) Find(name string) (ports.Codec, bool) {
	c, ok := r.codecs[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Names returns the registered codec names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PixelFormat returns the pixel format for a codec name, empty if unknown.
func PixelFormat(codecName string) string {
	if c, ok := NewRegistry().codecs[codecName]; ok {
		return c.pixelFormat
	}
	return ""
}

func decodeStd(fn func(r io.Reader) (image.Image, error)) decodeFunc {
	return func(data []byte, _ ports.StreamInfo) (image.Image, error) {
		return fn(bytes.NewReader(data))
	}
}

// decodeRGB24 decodes packed, top-down 24-bit RGB rows.
func decodeRGB24(data []byte, stream ports.StreamInfo) (image.Image, error) {
	w, h := stream.Width, stream.Height
	if len(data) < w*h*3 {
		return nil, fmt.Errorf("raw sample has %d bytes, need %d", len(data), w*h*3)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < w*h*3; i, j = i+3, j+4 {
		img.Pix[j] = data[i]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

var _ ports.CodecRegistry = (*Registry)(nil)
var _ ports.Codec = (*Codec)(nil)
