// Package summarizer provides summary generation for opened media files.
package summarizer

import (
	"time"

	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/reader"
)

// Summary contains what is known about one media file.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// File information
	File FileInfo

	// Decoded stream details
	Stream StreamInfo

	// Decode settings in effect
	Settings Settings
}

// FileInfo describes the file on disk.
type FileInfo struct {
	Path string
	Size int64
	// Error is the reason the file could not be opened, empty when it opened.
	Error string
}

// StreamInfo describes the decoded video stream.
type StreamInfo struct {
	Codec       string
	Width       int
	Height      int
	PixelAspect float64
	// FrameRate is the exact rate as num/den; FPS its decimal value.
	FrameRate  string
	FPS        float64
	Frames     int64
	Duration   time.Duration
	BitDepth   int
	Components int
	Colorspace string
}

// Settings contains the decode configuration.
type Settings struct {
	MaxDecodeThreads   int
	MaxRetries         int
	LoadNearest        bool
	ColorspaceOverride string
}

// SettingsFrom copies the decode settings out of caps.
func SettingsFrom(caps config.Capabilities) Settings {
	return Settings{
		MaxDecodeThreads:   caps.MaxDecodeThreads,
		MaxRetries:         caps.MaxRetries,
		LoadNearest:        caps.LoadNearest,
		ColorspaceOverride: caps.ColorspaceOverride,
	}
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithFile sets file information.
func (b *Builder) WithFile(path string, size int64) *Builder {
	b.summary.File.Path = path
	b.summary.File.Size = size
	return b
}

// WithError records why the file could not be opened.
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.summary.File.Error = err.Error()
	}
	return b
}

// WithStream sets stream information.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithReader fills stream information from an opened file, or records its
// error when it is invalid.
func (b *Builder) WithReader(f *reader.File) *Builder {
	if f.Invalid() {
		return b.WithError(f.Err())
	}
	info, ok := f.Info()
	if !ok {
		return b
	}

	stream := StreamInfo{
		Codec:       f.CodecName(),
		Width:       info.Width,
		Height:      info.Height,
		PixelAspect: info.PixelAspect,
		Frames:      info.Frames,
		BitDepth:    f.BitDepth(),
		Components:  f.Components(),
		Colorspace:  f.ColorspaceHint(),
	}
	if fps, ok := f.FPS(); ok && fps.Num > 0 && fps.Den > 0 {
		stream.FrameRate = fps.String()
		stream.FPS = fps.Float64()
		stream.Duration = time.Duration(float64(info.Frames) / stream.FPS * float64(time.Second))
	}
	return b.WithStream(stream)
}

// WithSettings sets decode settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
