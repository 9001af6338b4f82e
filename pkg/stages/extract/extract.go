// Package extract implements the frame extraction stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/framereader/pkg/pipeline"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/reader"
	"github.com/user/framereader/pkg/registry"
)

const jpegQuality = 95

// Stage writes a range of frames as image files.
type Stage struct {
	registry *registry.Registry
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new extract stage. Files are opened through reg with
// the stage as owner.
func NewStage(reg *registry.Registry, fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		registry: reg,
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("extract"),
	}
}

// Execute decodes the selected frames in order and writes one file per frame.
//
// A frame count that shrinks while extracting ends the run early without
// error; the result lists what was written.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	var result pipeline.ExtractResult

	file := s.registry.GetOrCreate(s, input.Filename)
	if file.Invalid() {
		return result, fmt.Errorf("open %s: %w", input.Filename, file.Err())
	}
	info, _ := file.Info()

	frames, err := input.Range.Frames(info.Frames)
	if err != nil {
		return result, err
	}

	pattern := input.NamePattern
	if pattern == "" {
		pattern = pipeline.DefaultNamePattern
	}
	format := ports.FormatFromPath(pattern)

	if err := s.fs.MkdirAll(input.OutDir); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	s.logger.Debug("Extracting %d frames from %s", len(frames), input.Filename)

	for i, n := range frames {
		buf, err := file.Decode(ctx, n, input.Decode)
		if err != nil {
			if errors.Is(err, reader.ErrMissingFrame) && len(result.Paths) > 0 {
				s.logger.Warn("Stream ended before frame %d, stopping", n)
				break
			}
			return result, err
		}
		if buf == nil {
			return result, ctx.Err()
		}

		data, err := s.renderer.EncodeImage(buf.Image(), format, jpegQuality)
		if err != nil {
			return result, fmt.Errorf("encode frame %d: %w", buf.Frame, err)
		}
		path := filepath.Join(input.OutDir, fmt.Sprintf(pattern, buf.Frame))
		if err := s.fs.WriteFile(path, data); err != nil {
			return result, fmt.Errorf("write frame %d: %w", buf.Frame, err)
		}

		result.Paths = append(result.Paths, path)
		result.Frames = append(result.Frames, buf.Frame)
		input.Progress.Report(i+1, len(frames))
	}

	s.logger.Debug("Extracted %d frames", len(result.Paths))
	return result, nil
}

// Close releases the files the stage opened.
func (s *Stage) Close() {
	s.registry.Clear(s)
}

var _ pipeline.FrameStage[pipeline.ExtractInput, pipeline.ExtractResult] = (*Stage)(nil)
