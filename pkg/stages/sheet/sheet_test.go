package sheet

import (
	"context"
	"errors"
	"image"
	"strconv"
	"testing"

	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/mocks"
	"github.com/user/framereader/pkg/pipeline"
	"github.com/user/framereader/pkg/reader"
	"github.com/user/framereader/pkg/registry"
)

// passThrough skips scaling so drawn thumbnails keep their frame tag.
func passThrough(img image.Image, width, height int) image.Image {
	return img
}

func newStage(t *testing.T, cfg mocks.MediaConfig) (*Stage, *mocks.Renderer, *mocks.Media) {
	t.Helper()
	media := mocks.NewMedia(cfg)
	caps := config.DefaultCapabilities()
	caps.AllowedCodecs[mocks.FakeCodecName] = true
	deps := reader.Deps{Demuxer: media, Codecs: media, Logger: mocks.NewLogger()}
	reg := registry.New(func(filename string) *reader.File {
		return reader.Open(filename, deps, caps)
	})

	renderer := &mocks.Renderer{ResizeImageFunc: passThrough}
	stage := NewStage(reg, renderer, mocks.NewLogger(), 3)
	t.Cleanup(func() {
		stage.Close()
		reg.Close()
	})
	return stage, renderer, media
}

func smallSheet() pipeline.SheetInput {
	input := pipeline.DefaultSheetInput()
	input.Filename = "clip.mov"
	input.Columns = 2
	input.ThumbWidth = 10
	input.Gap = 2
	input.Padding = 3
	input.LabelHeight = 6
	input.Decode = reader.DecodeOptions{MaxRetries: 3}
	return input
}

func tagOf(img image.Image) int {
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		return -1
	}
	return mocks.Tag(nrgba.Pix)
}

func TestStage_Execute(t *testing.T) {
	stage, renderer, _ := newStage(t, mocks.MediaConfig{Frames: 5, Width: 4, Height: 2, GOP: 2, Latency: 1, ReportStartTime: true})

	var reports int
	input := smallSheet()
	input.Progress = func(done, total int) {
		reports++
		if total != 5 {
			t.Errorf("expected total 5, got %d", total)
		}
	}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4x2 pixels at width 10 gives 5 pixel high thumbnails; 2 columns, 3 rows.
	if result.Layout.Canvas != (pipeline.Dimension{Width: 28, Height: 43}) {
		t.Errorf("unexpected canvas %+v", result.Layout.Canvas)
	}
	if len(result.Frames) != 5 || result.Frames[4] != 5 {
		t.Errorf("unexpected frames %v", result.Frames)
	}
	if reports != 5 {
		t.Errorf("expected 5 progress reports, got %d", reports)
	}

	canvases := renderer.Canvases()
	if len(canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(canvases))
	}
	canvas := canvases[0]
	if canvas.Width != 28 || canvas.Height != 43 {
		t.Errorf("expected 28x43 canvas, got %dx%d", canvas.Width, canvas.Height)
	}

	draws := canvas.Images()
	if len(draws) != 5 {
		t.Fatalf("expected 5 thumbnails, got %d", len(draws))
	}
	for _, d := range draws {
		frame := tagOf(d.Image)
		if frame < 1 || frame > 5 {
			t.Fatalf("drawn image has no frame tag")
		}
		cell := result.Layout.Cells[frame-1]
		if d.Rect.Min != image.Pt(cell.X, cell.Y) {
			t.Errorf("frame %d drawn at %v, want cell at (%d,%d)", frame, d.Rect.Min, cell.X, cell.Y)
		}
	}

	if strokes := canvas.Strokes(); len(strokes) != 5 {
		t.Errorf("expected 5 borders, got %d", len(strokes))
	}

	texts := canvas.Texts()
	if len(texts) != 5 {
		t.Fatalf("expected 5 labels, got %d", len(texts))
	}
	for _, text := range texts {
		n, err := strconv.Atoi(text.Text)
		if err != nil {
			t.Fatalf("label %q is not a frame number", text.Text)
		}
		cell := result.Layout.Cells[n-1]
		if text.X != cell.X+cell.Width/2 || text.Y != cell.Y+cell.Height+3 {
			t.Errorf("label %d at (%d,%d), want centred under its cell", n, text.X, text.Y)
		}
	}

	// One digit measures 2.52 wide; the plate adds half the label height.
	fills := canvas.Fills()
	if len(fills) != 5 {
		t.Fatalf("expected 5 label plates, got %d", len(fills))
	}
	for i, fill := range fills {
		if fill.Dx() != 6 || fill.Dy() != 6 {
			t.Errorf("plate %d is %dx%d, want 6x6", i, fill.Dx(), fill.Dy())
		}
	}
}

func TestStage_Execute_LabelWithoutPlate(t *testing.T) {
	stage, renderer, _ := newStage(t, mocks.MediaConfig{Frames: 3, ReportStartTime: true})

	input := smallSheet()
	input.Theme.LabelBackground = nil
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	canvas := renderer.Canvases()[0]
	if len(canvas.Texts()) != 3 {
		t.Errorf("expected 3 labels, got %d", len(canvas.Texts()))
	}
	if len(canvas.Fills()) != 0 {
		t.Errorf("expected no plates, got %d", len(canvas.Fills()))
	}
}

func TestStage_Execute_StopsWhenStreamEndsEarly(t *testing.T) {
	stage, renderer, _ := newStage(t, mocks.MediaConfig{Frames: 5, AdvertisedFrames: 8, ReportStartTime: true})

	result, err := stage.Execute(context.Background(), smallSheet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) != 5 || result.Frames[4] != 5 {
		t.Errorf("expected frames 1 to 5, got %v", result.Frames)
	}
	if len(result.Layout.Cells) != 5 {
		t.Errorf("expected 5 cells, got %d", len(result.Layout.Cells))
	}
	if draws := renderer.Canvases()[0].Images(); len(draws) != 5 {
		t.Errorf("expected 5 thumbnails, got %d", len(draws))
	}
}

func TestStage_Execute_Every(t *testing.T) {
	stage, _, _ := newStage(t, mocks.MediaConfig{Frames: 7, ReportStartTime: true})

	input := smallSheet()
	input.Range = pipeline.FrameRange{Every: 2}
	input.LabelHeight = 0
	input.BorderWidth = 0

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 3, 5, 7}
	if len(result.Frames) != len(want) {
		t.Fatalf("expected frames %v, got %v", want, result.Frames)
	}
	for i := range want {
		if result.Frames[i] != want[i] {
			t.Errorf("expected frames %v, got %v", want, result.Frames)
			break
		}
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		stage, _, _ := newStage(t, mocks.MediaConfig{Frames: 6, FailDecodeAt: 3, ReportStartTime: true})
		_, err := stage.Execute(context.Background(), smallSheet())
		if !errors.Is(err, reader.ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		stage, renderer, _ := newStage(t, mocks.MediaConfig{NoVideo: true})
		if _, err := stage.Execute(context.Background(), smallSheet()); err == nil {
			t.Error("expected error for a file without video")
		}
		if len(renderer.Canvases()) != 0 {
			t.Error("expected no canvas for an invalid file")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		stage, _, _ := newStage(t, mocks.MediaConfig{Frames: 6, ReportStartTime: true})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := stage.Execute(ctx, smallSheet()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestThumbHeight(t *testing.T) {
	tests := []struct {
		name          string
		thumbWidth    int
		width, height int
		aspect        float64
		want          int
	}{
		{"square pixels", 240, 1920, 1080, 1, 135},
		{"anamorphic", 240, 720, 576, 16.0 / 11.0, 132},
		{"unknown aspect", 100, 200, 100, 0, 50},
		{"unknown size", 100, 0, 0, 1, 100},
		{"never zero", 10, 4000, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThumbHeight(tt.thumbWidth, tt.width, tt.height, tt.aspect); got != tt.want {
				t.Errorf("ThumbHeight() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeLayout(t *testing.T) {
	input := pipeline.SheetInput{Columns: 4, ThumbWidth: 100, Gap: 10, Padding: 5}

	t.Run("fewer frames than columns", func(t *testing.T) {
		layout := ComputeLayout(input, 2, 50)
		if layout.Canvas != (pipeline.Dimension{Width: 220, Height: 60}) {
			t.Errorf("unexpected canvas %+v", layout.Canvas)
		}
		if layout.Cells[1] != (pipeline.Rectangle{X: 115, Y: 5, Width: 100, Height: 50}) {
			t.Errorf("unexpected cell %+v", layout.Cells[1])
		}
	})

	t.Run("wraps rows", func(t *testing.T) {
		layout := ComputeLayout(input, 9, 50)
		if len(layout.Cells) != 9 {
			t.Fatalf("expected 9 cells, got %d", len(layout.Cells))
		}
		if layout.Cells[8] != (pipeline.Rectangle{X: 5, Y: 125, Width: 100, Height: 50}) {
			t.Errorf("unexpected cell %+v", layout.Cells[8])
		}
		if layout.Canvas.Height != 2*5+3*50+2*10 {
			t.Errorf("unexpected canvas height %d", layout.Canvas.Height)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if layout := ComputeLayout(input, 0, 50); len(layout.Cells) != 0 {
			t.Errorf("expected no cells, got %d", len(layout.Cells))
		}
	})
}
