// Package pixfmt describes decoded pixel formats and the interleaved layouts
// frames are delivered in.
package pixfmt

import "fmt"

// Descriptor describes a decoded pixel format.
type Descriptor struct {
	Name       string
	Components int  // 1 gray, 2 gray+alpha, 3 colour, 4 colour+alpha
	BitDepth   int  // bits per component
	RGB        bool // false for YUV and gray
	Alpha      bool
}

var descriptors = map[string]Descriptor{
	"gray":       {Name: "gray", Components: 1, BitDepth: 8},
	"gray16":     {Name: "gray16", Components: 1, BitDepth: 16},
	"ya8":        {Name: "ya8", Components: 2, BitDepth: 8, Alpha: true},
	"rgb24":      {Name: "rgb24", Components: 3, BitDepth: 8, RGB: true},
	"rgba":       {Name: "rgba", Components: 4, BitDepth: 8, RGB: true, Alpha: true},
	"rgb48":      {Name: "rgb48", Components: 3, BitDepth: 16, RGB: true},
	"rgba64":     {Name: "rgba64", Components: 4, BitDepth: 16, RGB: true, Alpha: true},
	"yuv420p":    {Name: "yuv420p", Components: 3, BitDepth: 8},
	"yuvj420p":   {Name: "yuvj420p", Components: 3, BitDepth: 8},
	"yuv422p":    {Name: "yuv422p", Components: 3, BitDepth: 8},
	"yuvj422p":   {Name: "yuvj422p", Components: 3, BitDepth: 8},
	"yuv444p":    {Name: "yuv444p", Components: 3, BitDepth: 8},
	"yuvj444p":   {Name: "yuvj444p", Components: 3, BitDepth: 8},
	"yuv440p":    {Name: "yuv440p", Components: 3, BitDepth: 8},
	"yuv411p":    {Name: "yuv411p", Components: 3, BitDepth: 8},
	"yuv410p":    {Name: "yuv410p", Components: 3, BitDepth: 8},
	"yuva420p":   {Name: "yuva420p", Components: 4, BitDepth: 8, Alpha: true},
	"yuv420p10":  {Name: "yuv420p10", Components: 3, BitDepth: 10},
	"yuv422p10":  {Name: "yuv422p10", Components: 3, BitDepth: 10},
	"yuv444p10":  {Name: "yuv444p10", Components: 3, BitDepth: 10},
	"yuv444p16":  {Name: "yuv444p16", Components: 3, BitDepth: 16},
	"yuva444p16": {Name: "yuva444p16", Components: 4, BitDepth: 16, Alpha: true},
}

// Lookup returns the descriptor for a pixel format name.
func Lookup(name string) (Descriptor, bool) {
	d, ok := descriptors[name]
	return d, ok
}

// Layout is an interleaved output pixel layout.
type Layout int

const (
	RGB8 Layout = iota
	RGBA8
	RGB16
	RGBA16
)

// String returns the string representation of the layout.
func (l Layout) String() string {
	switch l {
	case RGB8:
		return "rgb8"
	case RGBA8:
		return "rgba8"
	case RGB16:
		return "rgb16"
	case RGBA16:
		return "rgba16"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Components returns the number of interleaved components per pixel.
func (l Layout) Components() int {
	if l == RGBA8 || l == RGBA16 {
		return 4
	}
	return 3
}

// BytesPerComponent returns 1 for 8-bit layouts and 2 for 16-bit layouts.
func (l Layout) BytesPerComponent() int {
	if l == RGB16 || l == RGBA16 {
		return 2
	}
	return 1
}

// BytesPerPixel returns the size of one interleaved pixel.
func (l Layout) BytesPerPixel() int {
	return l.Components() * l.BytesPerComponent()
}

// OutputComponents returns the component count a caller receives for d.
// Gray is promoted to colour; callers never receive single-channel buffers.
func OutputComponents(d Descriptor) int {
	switch d.Components {
	case 1:
		return 3
	case 2:
		return 4
	default:
		return d.Components
	}
}

// ChooseLayout picks the output layout for a source bit depth and component count.
func ChooseLayout(bitDepth, components int) Layout {
	wide := bitDepth > 8
	alpha := components >= 4
	switch {
	case wide && alpha:
		return RGBA16
	case wide:
		return RGB16
	case alpha:
		return RGBA8
	default:
		return RGB8
	}
}
