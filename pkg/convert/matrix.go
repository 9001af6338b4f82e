package convert

import (
	"image"
	"image/color"
)

// matrix holds YCbCr to RGB coefficients for colorimetries the standard
// library conversion (full-range BT.601) does not cover.
type matrix struct {
	kr, kb  float64
	limited bool
}

var coefficients = map[string][2]float64{
	"bt601":     {0.299, 0.114},
	"smpte170m": {0.299, 0.114},
	"bt470bg":   {0.299, 0.114},
	"bt709":     {0.2126, 0.0722},
	"bt2020":    {0.2627, 0.0593},
	"bt2020nc":  {0.2627, 0.0593},
}

// lookupMatrix returns a matrix and true when cm needs a non-default conversion.
func lookupMatrix(cm Colorimetry) (*matrix, bool) {
	k, ok := coefficients[cm.Space]
	if !ok {
		k = coefficients["bt601"]
	}
	limited := cm.Range == "tv"
	if k == coefficients["bt601"] && !limited {
		return nil, false
	}
	return &matrix{kr: k[0], kb: k[1], limited: limited}, true
}

func (m *matrix) toNRGBA64(src *image.YCbCr) *image.NRGBA64 {
	b := src.Bounds()
	dst := image.NewNRGBA64(b)
	kg := 1 - m.kr - m.kb
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			yy := float64(src.Y[src.YOffset(x, y)])
			ci := src.COffset(x, y)
			cb := float64(src.Cb[ci])
			cr := float64(src.Cr[ci])

			var l, u, v float64
			if m.limited {
				l = (yy - 16) / 219
				u = (cb - 128) / 224
				v = (cr - 128) / 224
			} else {
				l = yy / 255
				u = (cb - 128) / 255
				v = (cr - 128) / 255
			}

			r := l + 2*(1-m.kr)*v
			bl := l + 2*(1-m.kb)*u
			g := (l - m.kr*r - m.kb*bl) / kg

			dst.SetNRGBA64(x, y, color.NRGBA64{R: unit16(r), G: unit16(g), B: unit16(bl), A: 0xffff})
		}
	}
	return dst
}

func unit16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
