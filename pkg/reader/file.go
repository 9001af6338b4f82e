// Package reader opens media files and decodes frames from them with
// frame-accurate seeking.
//
// A File keeps one decoder per usable video stream. Only the first usable
// stream is ever decoded. Decoding is serialized per File; distinct Files
// decode in parallel.
package reader

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/user/framereader/pkg/adapters/logger"
	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

// Open failures recorded as the invalid message.
var (
	errNoCodec       = errors.New("unable to find codec")
	errNoVideoStream = errors.New("no video stream")
)

// Deps are the external collaborators a File needs.
type Deps struct {
	Demuxer ports.Demuxer
	Codecs  ports.CodecRegistry
	Logger  ports.Logger
}

// Info is the geometry and length of the decoded stream.
type Info struct {
	Width       int
	Height      int
	PixelAspect float64
	Frames      int64
}

// File is one open media file.
type File struct {
	mu        sync.Mutex
	filename  string
	container ports.Container
	streams   []*stream
	caps      config.Capabilities
	log       ports.Logger

	// invalid and err are written only by Open, before the File is
	// returned, and are read without mu. Once set the File must be discarded.
	invalid bool
	err     error

	colorspaceOverride string
	scaleWidth         int
	scaleHeight        int
	closed             bool
}

// Open opens filename and prepares a decoder for every usable video stream.
// Open never fails outright: problems mark the returned File invalid, with
// the reason available from Err.
func Open(filename string, deps Deps, caps config.Capabilities) *File {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	f := &File{
		filename:           filename,
		caps:               caps,
		log:                log.WithComponent("reader"),
		colorspaceOverride: caps.ColorspaceOverride,
	}

	container, err := deps.Demuxer.Open(filename)
	if err != nil {
		f.setInvalid(fmt.Errorf("unable to open file %s: %w", filename, err))
		return f
	}
	f.container = container

	sawVideo := false
	for _, info := range container.Streams() {
		if !info.HasCodecParams || info.MediaType != ports.MediaVideo {
			continue
		}
		sawVideo = true

		s, err := f.openStream(info, deps.Codecs)
		if err != nil {
			f.setInvalid(err)
			return f
		}
		if s == nil {
			continue
		}
		f.streams = append(f.streams, s)
	}

	if len(f.streams) == 0 {
		if sawVideo {
			f.setInvalid(fmt.Errorf("%s: %w", filename, errNoCodec))
		} else {
			f.setInvalid(fmt.Errorf("%s: %w", filename, errNoVideoStream))
		}
		return f
	}

	for _, s := range f.streams {
		s.startTS = s.discoverStartTime(container, f.log)
		s.frames = s.discoverFrames(container, f.log)
		f.log.Debug("Stream %d: %dx%d, %s fps, %d frames, start %d", s.index, s.width, s.height, s.fps, s.frames, s.startTS)
	}
	return f
}

// openStream returns nil without error when the stream is skipped.
func (f *File) openStream(info ports.StreamInfo, codecs ports.CodecRegistry) (*stream, error) {
	s, ok := newStream(info)
	if !ok {
		f.log.Debug("Skipping stream %d: unknown pixel format %q", info.Index, info.PixelFormat)
		return nil, nil
	}
	if !f.caps.AllowedCodecs[info.CodecName] {
		f.log.Debug("Skipping stream %d: codec %q is not allowed", info.Index, info.CodecName)
		return nil, nil
	}
	codec, ok := codecs.Find(info.CodecName)
	if !ok {
		f.log.Debug("Skipping stream %d: no decoder for %q", info.Index, info.CodecName)
		return nil, nil
	}

	s.codecCaps = codec.Capabilities()
	s.threads = 1
	if s.codecCaps.Threads {
		s.threads = min(runtime.NumCPU(), f.caps.MaxDecodeThreads)
	}

	decoder, err := codec.Open(info, s.threads)
	if err != nil {
		return nil, fmt.Errorf("unable to open codec %s: %w", info.CodecName, err)
	}
	s.decoder = decoder
	return s, nil
}

// setInvalid marks the File unusable and releases its resources.
func (f *File) setInvalid(err error) {
	f.invalid = true
	f.err = err
	f.log.Warn("Invalid file: %s", err)
	f.release()
}

func (f *File) release() {
	for _, s := range f.streams {
		s.close()
	}
	if f.container != nil {
		f.container.Close()
		f.container = nil
	}
}

// Close releases the decoders and the container. It is safe to call twice.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.container == nil {
		return nil
	}
	for _, s := range f.streams {
		s.close()
	}
	err := f.container.Close()
	f.container = nil
	return err
}

// Filename returns the path the File was opened with.
func (f *File) Filename() string {
	return f.filename
}

// Invalid reports whether the File failed to open and must be discarded.
// It does not wait for a Decode in progress.
func (f *File) Invalid() bool {
	return f.invalid
}

// Err returns the reason the File is invalid, or nil.
func (f *File) Err() error {
	return f.err
}

// Info returns the decoded stream's geometry and its current frame count.
func (f *File) Info() (Info, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalid || len(f.streams) == 0 {
		return Info{}, false
	}
	s := f.streams[0]
	return Info{
		Width:       s.width,
		Height:      s.height,
		PixelAspect: s.aspect.Float64(),
		Frames:      s.frames,
	}, true
}

// FPS returns the exact frame rate of the decoded stream.
func (f *File) FPS() (rational.Rational, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalid || len(f.streams) == 0 {
		return rational.Rational{}, false
	}
	return f.streams[0].fps, true
}

// BitDepth returns the bits per component of the decoded stream.
func (f *File) BitDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return 0
	}
	return f.streams[0].bitDepth
}

// Components returns the number of components delivered per pixel.
func (f *File) Components() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return 0
	}
	return f.streams[0].components
}

// CodecName returns the codec of the decoded stream.
func (f *File) CodecName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return ""
	}
	return f.streams[0].info.CodecName
}

// ColorspaceHint returns a best-effort colorspace label for the decoded
// stream: "sRGB", "Rec601", "Rec709" or "Rec2020".
func (f *File) ColorspaceHint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return ""
	}
	return f.streams[0].colorspaceHint()
}

// SetColorspaceOverride forces the YCbCr matrix used for conversion
// ("bt601", "bt709", "bt2020"). An empty name restores the stream's own.
func (f *File) SetColorspaceOverride(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colorspaceOverride = name
}

// SetOutputScale makes Decode deliver width x height buffers instead of the
// stream's native size. Zero restores native size.
func (f *File) SetOutputScale(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	f.scaleWidth, f.scaleHeight = width, height
}
