package mocks

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

// Fake media errors.
var (
	ErrFakeRead   = errors.New("fake: read failed")
	ErrFakeSeek   = errors.New("fake: seek failed")
	ErrFakeDecode = errors.New("fake: invalid data")
)

// FakeCodecName is the codec name of the fake video stream.
const FakeCodecName = "fake"

// MediaConfig describes a fake video file and how its codec misbehaves.
// Frame indices in the fields below are 1-based; zero disables a fault.
type MediaConfig struct {
	// Frames is the number of video packets actually present in the file.
	Frames int
	// AdvertisedFrames is the frame count the container reports. Zero
	// reports Frames, a negative value reports nothing.
	AdvertisedFrames int64

	TimeBase  rational.Rational // default 1/12800
	FrameRate rational.Rational // default 25/1
	// Origin is the timestamp of the first frame.
	Origin int64

	ReportStartTime         bool
	ReportStreamDuration    bool
	ReportContainerDuration bool

	Width        int // default 2
	Height       int // default 2
	PixelFormat  string
	CodecName    string
	ColorSpace   string
	SampleAspect rational.Rational
	CodecAspect  rational.Rational

	// GOP is the keyframe interval, default every frame is a keyframe.
	GOP int
	// Reorder swaps each pair of frames after a keyframe in decode order,
	// as B-frames do. Requires Latency >= 1 to decode in display order.
	Reorder bool
	// Latency is how many packets the decoder holds before emitting.
	Latency int
	// HiddenLatency is held on top of Latency but left out of Delay.
	HiddenLatency int
	// SendHook runs with the 1-based frame of every packet sent to a decoder.
	SendHook func(frame int)
	// BFrames is reported by the decoder.
	BFrames   int
	Threads   bool
	IntraOnly bool

	// AudioStream interleaves packets of a second, non-video stream.
	AudioStream bool
	// ExtraStreams are appended to the stream list without packets.
	ExtraStreams []ports.StreamInfo
	// NoVideo removes the video stream.
	NoVideo bool

	// MissingPTSBefore strips presentation timestamps from frames before it.
	MissingPTSBefore int
	// SeekOvershoot makes this many seeks land one keyframe late.
	SeekOvershoot int
	// NeverEmit makes the decoder swallow every packet.
	NeverEmit bool
	// DropFrom makes the decoder swallow this frame and every later one.
	DropFrom int
	// FailReadAt fails reading the packet of this frame.
	FailReadAt int
	// FailDecodeAt makes the decoder reject the packet of this frame.
	FailDecodeAt int
	// FailSeek fails every seek.
	FailSeek bool
}

// Media is a fake ports.Demuxer and ports.CodecRegistry serving one
// synthetic video stream. Decoded pictures are 2x2 images whose red and
// green channels hold the 1-based frame number (low and high byte).
type Media struct {
	OpenFunc func(filename string) (ports.Container, error)
	FindFunc func(name string) (ports.Codec, bool)

	mu         sync.Mutex
	cfg        MediaConfig
	opens      []string
	containers []*Container
	decoders   []*Decoder
}

// NewMedia creates fake media, filling defaults for unset fields.
func NewMedia(cfg MediaConfig) *Media {
	if !cfg.TimeBase.Valid() {
		cfg.TimeBase = rational.New(1, 12800)
	}
	if !cfg.FrameRate.Valid() {
		cfg.FrameRate = rational.New(25, 1)
	}
	if cfg.Width == 0 {
		cfg.Width = 2
	}
	if cfg.Height == 0 {
		cfg.Height = 2
	}
	if cfg.PixelFormat == "" {
		cfg.PixelFormat = "rgb24"
	}
	if cfg.CodecName == "" {
		cfg.CodecName = FakeCodecName
	}
	if cfg.GOP <= 0 {
		cfg.GOP = 1
	}
	return &Media{cfg: cfg}
}

// FrameTS returns the presentation timestamp of 0-based frame idx.
func (c MediaConfig) FrameTS(idx int) int64 {
	return c.Origin + rational.MulDiv(int64(idx), c.FrameRate.Den*c.TimeBase.Den, c.FrameRate.Num*c.TimeBase.Num)
}

func (c MediaConfig) frameAt(ts int64) int {
	return int(rational.MulDivRound(ts-c.Origin, c.TimeBase.Num*c.FrameRate.Num, c.TimeBase.Den*c.FrameRate.Den))
}

func (c MediaConfig) advertised() int64 {
	switch {
	case c.AdvertisedFrames > 0:
		return c.AdvertisedFrames
	case c.AdvertisedFrames < 0:
		return 0
	default:
		return int64(c.Frames)
	}
}

// decodeOrder returns the display index of every packet in decode order.
func (c MediaConfig) decodeOrder() []int {
	order := make([]int, 0, c.Frames)
	for start := 0; start < c.Frames; start += c.GOP {
		end := start + c.GOP
		if end > c.Frames {
			end = c.Frames
		}
		order = append(order, start)
		for i := start + 1; i < end; i += 2 {
			if c.Reorder && i+1 < end {
				order = append(order, i+1, i)
			} else {
				order = append(order, i)
				if i+1 < end {
					order = append(order, i+1)
				}
			}
		}
	}
	return order
}

// Streams returns the streams every container of this media reports.
func (m *Media) Streams() []ports.StreamInfo {
	cfg := m.cfg
	var streams []ports.StreamInfo
	if !cfg.NoVideo {
		n := cfg.advertised()
		video := ports.StreamInfo{
			Index:             0,
			MediaType:         ports.MediaVideo,
			HasCodecParams:    true,
			CodecName:         cfg.CodecName,
			PixelFormat:       cfg.PixelFormat,
			Width:             cfg.Width,
			Height:            cfg.Height,
			SampleAspectRatio: cfg.SampleAspect,
			CodecAspectRatio:  cfg.CodecAspect,
			TimeBase:          cfg.TimeBase,
			FrameRate:         cfg.FrameRate,
			StartTime:         ports.NoTimestamp,
			Duration:          ports.NoTimestamp,
			FrameCount:        n,
			ContainerDuration: ports.NoTimestamp,
			ColorSpace:        cfg.ColorSpace,
		}
		length := cfg.FrameTS(int(n)) - cfg.Origin
		if cfg.ReportStartTime {
			video.StartTime = cfg.Origin
		}
		if cfg.ReportStreamDuration {
			video.Duration = length
		}
		if cfg.ReportContainerDuration {
			video.ContainerDuration = rational.Rescale(length, cfg.TimeBase, rational.TimeBaseQ)
		}
		streams = append(streams, video)
	}
	if cfg.AudioStream {
		streams = append(streams, ports.StreamInfo{
			Index:          len(streams),
			MediaType:      ports.MediaAudio,
			HasCodecParams: true,
			CodecName:      "aac",
			TimeBase:       rational.New(1, 48000),
			StartTime:      ports.NoTimestamp,
			Duration:       ports.NoTimestamp,
		})
	}
	for _, s := range cfg.ExtraStreams {
		s.Index = len(streams)
		streams = append(streams, s)
	}
	return streams
}

// Open implements ports.Demuxer.
func (m *Media) Open(filename string) (ports.Container, error) {
	m.mu.Lock()
	m.opens = append(m.opens, filename)
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(filename)
	}

	c := &Container{media: m, streams: m.Streams()}
	if !m.cfg.NoVideo {
		for pos, idx := range m.cfg.decodeOrder() {
			c.packets = append(c.packets, m.videoPacket(pos, idx))
			if m.cfg.AudioStream {
				c.packets = append(c.packets, &ports.Packet{
					StreamIndex: 1,
					PTS:         int64(pos) * 1920,
					DTS:         int64(pos) * 1920,
					Keyframe:    true,
				})
			}
		}
	}

	m.mu.Lock()
	m.containers = append(m.containers, c)
	m.mu.Unlock()
	return c, nil
}

func (m *Media) videoPacket(pos, idx int) *ports.Packet {
	cfg := m.cfg
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(idx))
	pts := cfg.FrameTS(idx)
	if idx+1 < cfg.MissingPTSBefore {
		pts = ports.NoTimestamp
	}
	return &ports.Packet{
		StreamIndex: 0,
		PTS:         pts,
		DTS:         cfg.FrameTS(pos),
		Keyframe:    idx%cfg.GOP == 0,
		Data:        data,
	}
}

// Find implements ports.CodecRegistry. Only the configured codec name is known.
func (m *Media) Find(name string) (ports.Codec, bool) {
	if m.FindFunc != nil {
		return m.FindFunc(name)
	}
	if name != m.cfg.CodecName {
		return nil, false
	}
	return &Codec{media: m}, true
}

// Opens returns the filenames passed to Open, in order.
func (m *Media) Opens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opens...)
}

// Containers returns every container opened so far.
func (m *Media) Containers() []*Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Container(nil), m.containers...)
}

// Decoders returns every decoder opened so far.
func (m *Media) Decoders() []*Decoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Decoder(nil), m.decoders...)
}

// Seeks returns the number of seeks issued on all containers.
func (m *Media) Seeks() int {
	n := 0
	for _, c := range m.Containers() {
		n += len(c.SeekTargets())
	}
	return n
}

// Container is a fake ports.Container.
type Container struct {
	media   *Media
	streams []ports.StreamInfo
	packets []*ports.Packet
	cursor  int

	mu        sync.Mutex
	seeks     []int64
	overshoot int
	closed    bool
}

func (c *Container) Streams() []ports.StreamInfo {
	return c.streams
}

func (c *Container) ReadPacket() (*ports.Packet, error) {
	if c.cursor >= len(c.packets) {
		return nil, io.EOF
	}
	pkt := c.packets[c.cursor]
	if fail := c.media.cfg.FailReadAt; fail > 0 && pkt.StreamIndex == 0 && packetFrame(pkt)+1 == fail {
		return nil, ErrFakeRead
	}
	c.cursor++
	cp := *pkt
	return &cp, nil
}

// Seek lands on the last keyframe at or before timestamp, or one keyframe
// later while SeekOvershoot lasts.
func (c *Container) Seek(streamIndex int, timestamp int64) error {
	c.mu.Lock()
	c.seeks = append(c.seeks, timestamp)
	overshoot := c.overshoot < c.media.cfg.SeekOvershoot
	if overshoot {
		c.overshoot++
	}
	c.mu.Unlock()

	cfg := c.media.cfg
	if cfg.FailSeek {
		return ErrFakeSeek
	}
	if streamIndex != 0 || cfg.NoVideo {
		return fmt.Errorf("fake: no such stream %d", streamIndex)
	}

	target := cfg.frameAt(timestamp)
	if target >= cfg.Frames {
		target = cfg.Frames - 1
	}
	if target < 0 {
		target = 0
	}
	key := target - target%cfg.GOP
	if overshoot && key+cfg.GOP < cfg.Frames {
		key += cfg.GOP
	}

	for i, pkt := range c.packets {
		if pkt.StreamIndex == 0 && packetFrame(pkt) == key {
			c.cursor = i
			return nil
		}
	}
	c.cursor = len(c.packets)
	return nil
}

func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// SeekTargets returns the timestamps passed to Seek, in order.
func (c *Container) SeekTargets() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.seeks...)
}

// Closed reports whether Close was called.
func (c *Container) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Codec is a fake ports.Codec.
type Codec struct {
	media *Media
}

func (c *Codec) Name() string { return c.media.cfg.CodecName }

func (c *Codec) Capabilities() ports.CodecCapabilities {
	cfg := c.media.cfg
	return ports.CodecCapabilities{
		Threads:   cfg.Threads,
		Delay:     cfg.Latency > 0 || cfg.Reorder,
		IntraOnly: cfg.IntraOnly,
	}
}

func (c *Codec) Open(stream ports.StreamInfo, threads int) (ports.Decoder, error) {
	d := &Decoder{cfg: c.media.cfg, threads: threads, needKey: true}
	c.media.mu.Lock()
	c.media.decoders = append(c.media.decoders, d)
	c.media.mu.Unlock()
	return d, nil
}

// Decoder is a fake ports.Decoder holding Latency packets before it emits
// the lowest pending frame.
type Decoder struct {
	cfg      MediaConfig
	threads  int
	pending  []int
	needKey  bool
	draining bool
	closed   bool

	Sent    int
	Flushes int
}

func (d *Decoder) SendPacket(pkt *ports.Packet) error {
	if pkt == nil {
		d.draining = true
		return nil
	}
	d.Sent++
	idx := packetFrame(pkt)
	if d.cfg.SendHook != nil {
		d.cfg.SendHook(idx + 1)
	}
	if d.cfg.FailDecodeAt > 0 && idx+1 == d.cfg.FailDecodeAt {
		return ErrFakeDecode
	}
	if d.needKey && !pkt.Keyframe {
		return nil
	}
	d.needKey = false
	if d.cfg.NeverEmit || (d.cfg.DropFrom > 0 && idx+1 >= d.cfg.DropFrom) {
		return nil
	}
	d.pending = append(d.pending, idx)
	return nil
}

func (d *Decoder) ReceivePicture() (*ports.Picture, error) {
	if len(d.pending) == 0 {
		if d.draining {
			return nil, io.EOF
		}
		return nil, ports.ErrAgain
	}
	if !d.draining && len(d.pending) <= d.cfg.Latency+d.cfg.HiddenLatency {
		return nil, ports.ErrAgain
	}

	lowest := 0
	for i, idx := range d.pending {
		if idx < d.pending[lowest] {
			lowest = i
		}
	}
	idx := d.pending[lowest]
	d.pending = append(d.pending[:lowest], d.pending[lowest+1:]...)

	return &ports.Picture{
		Image:       TaggedImage(idx+1, d.cfg.Width, d.cfg.Height),
		PixelFormat: d.cfg.PixelFormat,
		PTS:         d.cfg.FrameTS(idx),
	}, nil
}

func (d *Decoder) Flush() {
	d.Flushes++
	d.pending = nil
	d.needKey = true
	d.draining = false
}

func (d *Decoder) Delay() int { return d.cfg.Latency }

func (d *Decoder) BFrames() int { return d.cfg.BFrames }

func (d *Decoder) Close() error {
	d.closed = true
	return nil
}

// Threads returns the thread count the decoder was opened with.
func (d *Decoder) Threads() int { return d.threads }

// Closed reports whether Close was called.
func (d *Decoder) Closed() bool { return d.closed }

// TaggedImage returns an opaque image whose red and green channels encode tag.
func TaggedImage(tag, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := color.RGBA{R: uint8(tag), G: uint8(tag >> 8), B: 0, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Tag reads back the frame number from the first pixel of an interleaved
// 8-bit buffer.
func Tag(pix []byte) int {
	if len(pix) < 2 {
		return -1
	}
	return int(pix[0]) | int(pix[1])<<8
}

func packetFrame(pkt *ports.Packet) int {
	if len(pkt.Data) < 4 {
		return -1
	}
	return int(binary.BigEndian.Uint32(pkt.Data))
}

var (
	_ ports.Demuxer       = (*Media)(nil)
	_ ports.CodecRegistry = (*Media)(nil)
	_ ports.Container     = (*Container)(nil)
	_ ports.Codec         = (*Codec)(nil)
	_ ports.Decoder       = (*Decoder)(nil)
)
