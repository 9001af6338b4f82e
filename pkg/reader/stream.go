package reader

import (
	"github.com/user/framereader/pkg/convert"
	"github.com/user/framereader/pkg/pixfmt"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

// unknownFrame marks a cursor whose position is unknown, right after a seek.
const unknownFrame int64 = -1

// stream is the decode state of one video stream.
type stream struct {
	index     int
	info      ports.StreamInfo
	decoder   ports.Decoder
	codecCaps ports.CodecCapabilities
	threads   int

	width      int
	height     int
	aspect     rational.Rational
	fps        rational.Rational
	timeBase   rational.Rational
	bitDepth   int
	components int
	rgb        bool
	layout     pixfmt.Layout

	startTS int64
	// frames only ever decreases after open.
	frames int64

	// nextFrameIn is the frame the next fed packet belongs to; nextFrameOut
	// the frame the next decoded picture is. nextFrameOut <= nextFrameIn.
	nextFrameIn  int64
	nextFrameOut int64
	// accumLatency counts feeds without output since the last seek.
	accumLatency int

	// useDTS switches timestamps to decode order once presentation
	// timestamps proved absent.
	useDTS  bool
	ptsSeen bool

	conv *convert.Context
}

// newStream derives the stream's static properties. It reports false when
// the pixel format is unknown.
func newStream(info ports.StreamInfo) (*stream, bool) {
	desc, ok := pixfmt.Lookup(info.PixelFormat)
	if !ok {
		return nil, false
	}

	s := &stream{
		index:        info.Index,
		info:         info,
		width:        info.Width,
		height:       info.Height,
		timeBase:     info.TimeBase,
		fps:          info.FrameRate,
		bitDepth:     desc.BitDepth,
		components:   pixfmt.OutputComponents(desc),
		rgb:          desc.RGB,
		nextFrameIn:  unknownFrame,
		nextFrameOut: unknownFrame,
	}
	s.layout = pixfmt.ChooseLayout(s.bitDepth, s.components)

	switch {
	case info.SampleAspectRatio.Valid() && info.SampleAspectRatio.Num > 0:
		s.aspect = info.SampleAspectRatio
	case info.CodecAspectRatio.Valid() && info.CodecAspectRatio.Num > 0:
		s.aspect = info.CodecAspectRatio
	default:
		s.aspect = rational.New(1, 1)
	}

	if !s.timeBase.Valid() {
		s.timeBase = rational.New(1, 90000)
	}
	if !s.fps.Valid() || s.fps.Num <= 0 {
		s.fps = rational.New(s.timeBase.Den, s.timeBase.Num).Reduce()
	}
	return s, true
}

// frameToTS converts a 0-based frame index to a timestamp in the stream time base.
func (s *stream) frameToTS(frame int64) int64 {
	return s.startTS + rational.MulDiv(frame, s.fps.Den*s.timeBase.Den, s.fps.Num*s.timeBase.Num)
}

// tsToFrame converts a timestamp to the nearest 0-based frame index, so
// timestamps truncated or rounded by a muxer map back to their frame.
func (s *stream) tsToFrame(ts int64) int64 {
	return rational.MulDivRound(ts-s.startTS, s.timeBase.Num*s.fps.Num, s.timeBase.Den*s.fps.Den)
}

// packetTS returns the timestamp field currently selected for pkt.
func (s *stream) packetTS(pkt *ports.Packet) int64 {
	if s.useDTS {
		return pkt.DTS
	}
	return pkt.PTS
}

// stallThreshold is how many feeds may produce nothing before a stall is
// declared. Each decode thread may hold one more frame in flight.
func (s *stream) stallThreshold() int {
	return s.decoder.Delay() + s.decoder.BFrames() + s.threads
}

// resetCursors forgets the decode position so the next call seeks.
func (s *stream) resetCursors() {
	s.nextFrameIn = unknownFrame
	s.nextFrameOut = unknownFrame
	s.accumLatency = 0
	if s.decoder != nil {
		s.decoder.Flush()
	}
}

func (s *stream) colorspaceHint() string {
	if s.rgb {
		return "sRGB"
	}
	switch s.info.ColorSpace {
	case "bt709":
		return "Rec709"
	case "smpte170m", "bt601", "bt470bg":
		return "Rec601"
	case "bt2020", "bt2020nc", "bt2020c":
		return "Rec2020"
	}
	if s.height >= 720 {
		return "Rec709"
	}
	return "Rec601"
}

// conversion returns the cached conversion context for pic, rebuilding it
// when the picture, output size or colorimetry changed.
func (s *stream) conversion(pic *ports.Picture, dstWidth, dstHeight int, override string) (*convert.Context, error) {
	b := pic.Image.Bounds()
	if dstWidth <= 0 || dstHeight <= 0 {
		dstWidth, dstHeight = s.width, s.height
	}
	if dstWidth <= 0 || dstHeight <= 0 {
		dstWidth, dstHeight = b.Dx(), b.Dy()
	}
	space := s.info.ColorSpace
	if override != "" {
		space = override
	}
	key := convert.Key{
		SrcWidth:    b.Dx(),
		SrcHeight:   b.Dy(),
		SrcFormat:   pic.PixelFormat,
		DstWidth:    dstWidth,
		DstHeight:   dstHeight,
		Layout:      s.layout,
		Colorimetry: convert.Colorimetry{Space: space, Range: s.info.ColorRange},
	}
	ctx, err := convert.Reuse(s.conv, key)
	if err != nil {
		return nil, err
	}
	s.conv = ctx
	return ctx, nil
}

func (s *stream) close() {
	if s.decoder != nil {
		s.decoder.Close()
		s.decoder = nil
	}
	s.conv = nil
}
