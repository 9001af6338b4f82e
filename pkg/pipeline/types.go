package pipeline

import (
	"errors"
	"image"
	"image/color"

	"github.com/user/framereader/pkg/reader"
)

// ErrEmptyRange is returned when a frame range selects no frames.
var ErrEmptyRange = errors.New("frame range selects no frames")

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Rectangle represents a rectangular area.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FrameRange selects 1-based frame numbers.
type FrameRange struct {
	From  int // First frame (default: 1)
	To    int // Last frame, inclusive (default: last frame of the file)
	Every int // Step between selected frames (default: 1)
}

// Frames expands the range against a file holding total frames.
// Bounds past the end of the file are clamped.
func (r FrameRange) Frames(total int64) ([]int, error) {
	from, to, every := r.From, r.To, r.Every
	if from < 1 {
		from = 1
	}
	if to <= 0 || int64(to) > total {
		to = int(total)
	}
	if every < 1 {
		every = 1
	}
	if from > to {
		return nil, ErrEmptyRange
	}
	frames := make([]int, 0, (to-from)/every+1)
	for n := from; n <= to; n += every {
		frames = append(frames, n)
	}
	return frames, nil
}

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput contains parameters for writing frames as image files.
type ExtractInput struct {
	Filename string
	Range    FrameRange
	OutDir   string
	// NamePattern is a printf pattern taking the frame number (default: frame_%06d.png).
	NamePattern string
	Decode      reader.DecodeOptions
	Progress    ProgressFunc
}

// DefaultNamePattern names extracted frames.
const DefaultNamePattern = "frame_%06d.png"

// ExtractResult lists the written files in frame order.
type ExtractResult struct {
	Paths  []string
	Frames []int
}

// =============================================================================
// Sheet Stage Types
// =============================================================================

// SheetInput contains parameters for a contact sheet.
type SheetInput struct {
	Filename    string
	Range       FrameRange
	Columns     int // Thumbnails per row (default: 4)
	ThumbWidth  int // Thumbnail width; height follows the pixel aspect (default: 240)
	Gap         int // Gap between thumbnails (default: 8)
	Padding     int // Padding around the sheet (default: 16)
	BorderWidth int // Thumbnail border width (default: 1)
	LabelHeight int // Height of the frame number label under each thumbnail (default: 0)
	Theme       SheetTheme
	Decode      reader.DecodeOptions
	Progress    ProgressFunc
}

// DefaultSheetInput returns SheetInput with default values.
func DefaultSheetInput() SheetInput {
	return SheetInput{
		Columns:     4,
		ThumbWidth:  240,
		Gap:         8,
		Padding:     16,
		BorderWidth: 1,
		Theme:       DefaultSheetTheme(),
	}
}

// SheetTheme defines sheet styling.
type SheetTheme struct {
	BackgroundColor color.Color
	BorderColor     color.Color
	TextColor       color.Color
	// LabelBackground fills a plate behind each frame label. Nil draws none.
	LabelBackground color.Color
}

// DefaultSheetTheme returns a default sheet theme.
func DefaultSheetTheme() SheetTheme {
	return SheetTheme{
		BackgroundColor: color.RGBA{R: 26, G: 26, B: 46, A: 255},
		BorderColor:     color.RGBA{R: 51, G: 51, B: 85, A: 255},
		TextColor:       color.White,
		LabelBackground: color.Black,
	}
}

// SheetLayout contains the calculated sheet dimensions and cell positions.
type SheetLayout struct {
	Canvas Dimension
	// Cells holds one thumbnail rectangle per selected frame, row-major.
	Cells []Rectangle
}

// SheetResult contains the rendered sheet.
type SheetResult struct {
	Image  image.Image
	Layout SheetLayout
	Frames []int
}
