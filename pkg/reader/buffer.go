package reader

import (
	"image"

	"github.com/user/framereader/pkg/pixfmt"
)

// Buffer is one decoded frame as interleaved pixels. 16-bit layouts store
// each component big-endian.
type Buffer struct {
	Width  int
	Height int
	Layout pixfmt.Layout
	Stride int
	Pix    []byte
	// Frame is the 1-based frame number the buffer holds.
	Frame int
}

// Image wraps the buffer as a non-premultiplied image. Four-component
// layouts share Pix; three-component layouts are expanded with opaque alpha.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	bpc := b.Layout.BytesPerComponent()

	if b.Layout.Components() == 4 {
		if bpc == 2 {
			return &image.NRGBA64{Pix: b.Pix, Stride: b.Stride, Rect: rect}
		}
		return &image.NRGBA{Pix: b.Pix, Stride: b.Stride, Rect: rect}
	}

	if bpc == 2 {
		img := image.NewNRGBA64(rect)
		for y := 0; y < b.Height; y++ {
			src := b.Pix[y*b.Stride:]
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < b.Width; x++ {
				copy(dst[x*8:x*8+6], src[x*6:x*6+6])
				dst[x*8+6], dst[x*8+7] = 0xff, 0xff
			}
		}
		return img
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			copy(dst[x*4:x*4+3], src[x*3:x*3+3])
			dst[x*4+3] = 0xff
		}
	}
	return img
}
