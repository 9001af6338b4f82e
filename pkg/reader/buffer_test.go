package reader

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereader/pkg/pixfmt"
)

func TestBuffer_Image(t *testing.T) {
	t.Run("rgba8 shares pixels", func(t *testing.T) {
		buf := &Buffer{Width: 2, Height: 1, Layout: pixfmt.RGBA8, Stride: 8,
			Pix: []byte{1, 2, 3, 4, 5, 6, 7, 8}}

		img, ok := buf.Image().(*image.NRGBA)
		require.True(t, ok)
		assert.Equal(t, color.NRGBA{R: 5, G: 6, B: 7, A: 8}, img.NRGBAAt(1, 0))

		buf.Pix[0] = 99
		assert.Equal(t, uint8(99), img.Pix[0])
	})

	t.Run("rgb8 gains opaque alpha", func(t *testing.T) {
		buf := &Buffer{Width: 2, Height: 2, Layout: pixfmt.RGB8, Stride: 6,
			Pix: []byte{
				10, 20, 30, 40, 50, 60,
				70, 80, 90, 100, 110, 120,
			}}

		img, ok := buf.Image().(*image.NRGBA)
		require.True(t, ok)
		assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
		assert.Equal(t, color.NRGBA{R: 40, G: 50, B: 60, A: 0xff}, img.NRGBAAt(1, 0))
		assert.Equal(t, color.NRGBA{R: 70, G: 80, B: 90, A: 0xff}, img.NRGBAAt(0, 1))
	})

	t.Run("rgb16 keeps full precision", func(t *testing.T) {
		buf := &Buffer{Width: 1, Height: 1, Layout: pixfmt.RGB16, Stride: 6,
			Pix: []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc}}

		img, ok := buf.Image().(*image.NRGBA64)
		require.True(t, ok)
		assert.Equal(t, color.NRGBA64{R: 0x1234, G: 0x5678, B: 0x9abc, A: 0xffff}, img.NRGBA64At(0, 0))
	})

	t.Run("rgba16", func(t *testing.T) {
		buf := &Buffer{Width: 1, Height: 1, Layout: pixfmt.RGBA16, Stride: 8,
			Pix: []byte{0, 1, 0, 2, 0, 3, 0x80, 0}}

		img, ok := buf.Image().(*image.NRGBA64)
		require.True(t, ok)
		assert.Equal(t, color.NRGBA64{R: 1, G: 2, B: 3, A: 0x8000}, img.NRGBA64At(0, 0))
	})

	t.Run("padded stride", func(t *testing.T) {
		buf := &Buffer{Width: 1, Height: 2, Layout: pixfmt.RGB8, Stride: 4,
			Pix: []byte{1, 2, 3, 0, 4, 5, 6, 0}}

		img := buf.Image().(*image.NRGBA)
		assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 0xff}, img.NRGBAAt(0, 1))
	})
}
