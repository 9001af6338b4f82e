// Package convert turns decoded pictures into interleaved output buffers,
// scaling and colour converting with golang.org/x/image/draw.
package convert

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/framereader/pkg/pixfmt"
)

// ErrEmptyPicture is returned when Convert is given a nil or empty image.
var ErrEmptyPicture = errors.New("convert: empty picture")

// Colorimetry selects the YCbCr to RGB matrix and signal range.
type Colorimetry struct {
	Space string // "bt601", "bt709", "bt2020"; empty means bt601
	Range string // "tv" (limited) or "pc" (full); empty means full
}

// Key identifies a conversion configuration. A cached Context is reused only
// while its key is unchanged.
type Key struct {
	SrcWidth    int
	SrcHeight   int
	SrcFormat   string
	DstWidth    int
	DstHeight   int
	Layout      pixfmt.Layout
	Colorimetry Colorimetry
}

// Context converts pictures for one Key.
type Context struct {
	key    Key
	scaler draw.Interpolator
	matrix *matrix
}

// New creates a conversion context.
func New(key Key) (*Context, error) {
	if key.SrcWidth <= 0 || key.SrcHeight <= 0 || key.DstWidth <= 0 || key.DstHeight <= 0 {
		return nil, fmt.Errorf("convert: invalid dimensions %dx%d -> %dx%d",
			key.SrcWidth, key.SrcHeight, key.DstWidth, key.DstHeight)
	}
	c := &Context{key: key, scaler: draw.CatmullRom}
	if m, custom := lookupMatrix(key.Colorimetry); custom {
		c.matrix = m
	}
	return c, nil
}

// Reuse returns ctx when it was built for key, otherwise a new Context.
func Reuse(ctx *Context, key Key) (*Context, error) {
	if ctx != nil && ctx.key == key {
		return ctx, nil
	}
	return New(key)
}

// Key returns the configuration the context was built for.
func (c *Context) Key() Key {
	return c.key
}

// Convert writes img into a new interleaved buffer and returns it with its stride.
func (c *Context) Convert(img image.Image) ([]byte, int, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, 0, ErrEmptyPicture
	}

	src := img
	if ycc, ok := img.(*image.YCbCr); ok && c.matrix != nil {
		src = c.matrix.toNRGBA64(ycc)
	}

	dstRect := image.Rect(0, 0, c.key.DstWidth, c.key.DstHeight)
	layout := c.key.Layout
	if layout.BytesPerComponent() == 2 {
		dst := image.NewNRGBA64(dstRect)
		c.draw(dst, src)
		return pack(dst.Pix, dst.Stride, c.key.DstWidth, c.key.DstHeight, layout)
	}
	dst := image.NewNRGBA(dstRect)
	c.draw(dst, src)
	return pack(dst.Pix, dst.Stride, c.key.DstWidth, c.key.DstHeight, layout)
}

func (c *Context) draw(dst draw.Image, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == dst.Bounds().Dx() && sb.Dy() == dst.Bounds().Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
		return
	}
	c.scaler.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
}

// pack converts 4-component rows into the requested layout.
func pack(pix []byte, stride, width, height int, layout pixfmt.Layout) ([]byte, int, error) {
	bpc := layout.BytesPerComponent()
	if layout.Components() == 4 {
		rowLen := width * 4 * bpc
		if stride == rowLen {
			return pix, stride, nil
		}
		out := make([]byte, rowLen*height)
		for y := 0; y < height; y++ {
			copy(out[y*rowLen:(y+1)*rowLen], pix[y*stride:y*stride+rowLen])
		}
		return out, rowLen, nil
	}

	pixel := 3 * bpc
	rowLen := width * pixel
	out := make([]byte, rowLen*height)
	for y := 0; y < height; y++ {
		srcRow := pix[y*stride:]
		dstRow := out[y*rowLen:]
		for x := 0; x < width; x++ {
			copy(dstRow[x*pixel:(x+1)*pixel], srcRow[x*4*bpc:x*4*bpc+pixel])
		}
	}
	return out, rowLen, nil
}
