package ffmpegcodec

import (
	"fmt"
	"time"

	"github.com/user/framereader/pkg/ports"
)

// Codec names.
const (
	CodecH264 = "h264"
	CodecHEVC = "hevc"
)

// reorderDepth is the largest number of frames H.264 and HEVC may hold back
// for reordering.
const reorderDepth = 16

// DefaultFrameTimeout bounds how long a decoder waits for ffmpeg to emit a
// frame it owes.
const DefaultFrameTimeout = 10 * time.Second

// Codec implements ports.Codec for one elementary stream format.
type Codec struct {
	name    string
	format  string // ffmpeg demuxer name
	ffmpeg  string
	timeout time.Duration
}

// Name returns the codec name.
func (c *Codec) Name() string { return c.name }

// Capabilities reports a threaded codec that holds frames.
func (c *Codec) Capabilities() ports.CodecCapabilities {
	return ports.CodecCapabilities{Threads: true, Delay: true}
}

// Open creates a decoder for stream. ffmpeg is started on the first packet.
func (c *Codec) Open(stream ports.StreamInfo, threads int) (ports.Decoder, error) {
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("ffmpegcodec: %s stream %d has no dimensions", c.name, stream.Index)
	}
	if threads < 1 {
		threads = 1
	}
	return &Decoder{
		codec:   c,
		stream:  stream,
		threads: threads,
	}, nil
}

// Registry implements ports.CodecRegistry for the codecs ffmpeg decodes.
type Registry struct {
	codecs map[string]*Codec
}

// Option configures a Registry.
type Option func(*Registry)

// WithFrameTimeout sets how long decoders wait for an owed frame.
func WithFrameTimeout(d time.Duration) Option {
	return func(r *Registry) {
		for _, c := range r.codecs {
			c.timeout = d
		}
	}
}

// NewRegistry locates ffmpeg (custom path first, then PATH) and returns a
// registry of the codecs it can decode.
func NewRegistry(customPath string, opts ...Option) (*Registry, error) {
	path, err := FindFFmpeg(customPath)
	if err != nil {
		return nil, err
	}
	r := &Registry{codecs: make(map[string]*Codec)}
	for _, c := range []*Codec{
		{name: CodecH264, format: "h264"},
		{name: CodecHEVC, format: "hevc"},
	} {
		c.ffmpeg = path
		c.timeout = DefaultFrameTimeout
		r.codecs[c.name] = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Find returns the codec registered under name.
func (r *Registry) Find(name string) (ports.Codec, bool) {
	c, ok := r.codecs[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Chain looks codecs up in each registry in turn.
type Chain []ports.CodecRegistry

// Find returns the first codec registered under name.
func (ch Chain) Find(name string) (ports.Codec, bool) {
	for _, r := range ch {
		if r == nil {
			continue
		}
		if c, ok := r.Find(name); ok {
			return c, true
		}
	}
	return nil, false
}

var _ ports.CodecRegistry = (*Registry)(nil)
var _ ports.CodecRegistry = Chain(nil)
var _ ports.Codec = (*Codec)(nil)
