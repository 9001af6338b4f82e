// Package sheet implements the contact sheet stage.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/user/framereader/pkg/pipeline"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/reader"
	"github.com/user/framereader/pkg/registry"
)

// Stage renders selected frames of a file as a grid of thumbnails.
type Stage struct {
	registry   *registry.Registry
	renderer   ports.Renderer
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new sheet stage. Files are opened through reg with
// the stage as owner.
func NewStage(reg *registry.Registry, renderer ports.Renderer, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		registry:   reg,
		renderer:   renderer,
		logger:     logger.WithComponent("sheet"),
		numWorkers: numWorkers,
	}
}

// ThumbHeight returns the thumbnail height that keeps the display aspect of
// a width x height picture with the given pixel aspect.
func ThumbHeight(thumbWidth, width, height int, pixelAspect float64) int {
	if width <= 0 || height <= 0 {
		return thumbWidth
	}
	if pixelAspect <= 0 {
		pixelAspect = 1
	}
	h := int(math.Round(float64(thumbWidth) * float64(height) / (float64(width) * pixelAspect)))
	return max(h, 1)
}

// ComputeLayout places count thumbnails of thumbHeight on a grid.
func ComputeLayout(input pipeline.SheetInput, count, thumbHeight int) pipeline.SheetLayout {
	if count <= 0 {
		return pipeline.SheetLayout{}
	}
	cols := min(max(input.Columns, 1), count)
	rows := (count + cols - 1) / cols
	cellHeight := thumbHeight + input.LabelHeight

	layout := pipeline.SheetLayout{
		Canvas: pipeline.Dimension{
			Width:  2*input.Padding + cols*input.ThumbWidth + (cols-1)*input.Gap,
			Height: 2*input.Padding + rows*cellHeight + (rows-1)*input.Gap,
		},
		Cells: make([]pipeline.Rectangle, count),
	}
	for i := range layout.Cells {
		col, row := i%cols, i/cols
		layout.Cells[i] = pipeline.Rectangle{
			X:      input.Padding + col*(input.ThumbWidth+input.Gap),
			Y:      input.Padding + row*(cellHeight+input.Gap),
			Width:  input.ThumbWidth,
			Height: thumbHeight,
		}
	}
	return layout
}

// job is a decoded frame waiting to be scaled into its cell.
type job struct {
	index int
	frame int
	img   image.Image
}

// thumb is a scaled frame ready to be drawn.
type thumb struct {
	index int
	frame int
	img   image.Image
}

// Execute decodes the selected frames in order and draws them on one canvas.
// Decoding is sequential, scaling runs on the worker pool.
func (s *Stage) Execute(ctx context.Context, input pipeline.SheetInput) (pipeline.SheetResult, error) {
	file := s.registry.GetOrCreate(s, input.Filename)
	if file.Invalid() {
		return pipeline.SheetResult{}, fmt.Errorf("open %s: %w", input.Filename, file.Err())
	}
	info, _ := file.Info()

	frames, err := input.Range.Frames(info.Frames)
	if err != nil {
		return pipeline.SheetResult{}, err
	}

	thumbHeight := ThumbHeight(input.ThumbWidth, info.Width, info.Height, info.PixelAspect)
	layout := ComputeLayout(input, len(frames), thumbHeight)
	s.logger.Debug("Sheet of %d frames: %dx%d canvas", len(frames), layout.Canvas.Width, layout.Canvas.Height)

	jobs := make(chan job, len(frames))
	results := make(chan thumb, len(frames))
	errChan := make(chan error, s.numWorkers+1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < s.numWorkers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, layout, jobs, results)
	}

	decoded := make([]int, len(frames))
	count := len(frames)
	go func() {
		defer close(jobs)
		for i, n := range frames {
			buf, err := file.Decode(ctx, n, input.Decode)
			if err != nil {
				if errors.Is(err, reader.ErrMissingFrame) && i > 0 {
					s.logger.Warn("Stream ended before frame %d, stopping", n)
					count = i
					return
				}
				errChan <- err
				cancel()
				return
			}
			if buf == nil {
				errChan <- ctx.Err()
				return
			}
			decoded[i] = buf.Frame
			jobs <- job{index: i, frame: buf.Frame, img: buf.Image()}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	canvas := s.renderer.CreateCanvas(layout.Canvas.Width, layout.Canvas.Height, input.Theme.BackgroundColor)
	done := 0
	for t := range results {
		s.drawCell(canvas, input, layout.Cells[t.index], t.img, t.frame)
		done++
		input.Progress.Report(done, len(frames))
	}

	select {
	case err := <-errChan:
		return pipeline.SheetResult{}, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return pipeline.SheetResult{}, err
	}

	// Cells past an early end of stream stay empty.
	layout.Cells = layout.Cells[:count]
	s.logger.Debug("Sheet completed")
	return pipeline.SheetResult{
		Image:  canvas.ToImage(),
		Layout: layout,
		Frames: decoded[:count],
	}, nil
}

// worker scales decoded frames into their cells.
func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	layout pipeline.SheetLayout,
	jobs <-chan job,
	results chan<- thumb,
) {
	defer wg.Done()

	for j := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		cell := layout.Cells[j.index]
		results <- thumb{index: j.index, frame: j.frame, img: s.renderer.ResizeImage(j.img, cell.Width, cell.Height)}
	}
}

// drawCell draws one thumbnail with its border and label.
func (s *Stage) drawCell(canvas ports.Canvas, input pipeline.SheetInput, cell pipeline.Rectangle, img image.Image, frame int) {
	canvas.DrawImage(img, cell.X, cell.Y)

	if input.BorderWidth > 0 {
		canvas.DrawRectStroke(cell.X, cell.Y, cell.Width, cell.Height, input.Theme.BorderColor, float64(input.BorderWidth))
	}

	if input.LabelHeight > 0 {
		label := strconv.Itoa(frame)
		style := ports.TextStyle{
			FontSize: float64(input.LabelHeight) * 0.7,
			Color:    input.Theme.TextColor,
			Align:    ports.AlignCenter,
		}
		centerX := cell.X + cell.Width/2
		if input.Theme.LabelBackground != nil {
			w, _ := canvas.MeasureText(label, style)
			plate := min(int(math.Ceil(w))+input.LabelHeight/2, cell.Width)
			canvas.DrawRect(centerX-plate/2, cell.Y+cell.Height, plate, input.LabelHeight, input.Theme.LabelBackground)
		}
		canvas.DrawText(label, centerX, cell.Y+cell.Height+input.LabelHeight/2, style)
	}
}

// Close releases the files the stage opened.
func (s *Stage) Close() {
	s.registry.Clear(s)
}

var _ pipeline.FrameStage[pipeline.SheetInput, pipeline.SheetResult] = (*Stage)(nil)
