package ports

import (
	"errors"
	"image"
	"math"

	"github.com/user/framereader/pkg/rational"
)

// NoTimestamp marks an absent timestamp, start time or duration.
const NoTimestamp int64 = math.MinInt64

// ErrAgain is returned by Decoder.ReceivePicture when no picture is ready yet.
var ErrAgain = errors.New("resource temporarily unavailable")

// MediaType identifies the kind of data a stream carries.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaVideo
	MediaAudio
	MediaData
)

// String returns the string representation of the media type.
func (m MediaType) String() string {
	switch m {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	case MediaData:
		return "data"
	default:
		return "unknown"
	}
}

// StreamInfo describes one stream of an opened container.
type StreamInfo struct {
	Index     int
	MediaType MediaType

	// HasCodecParams is false when the container could not describe the stream's codec.
	HasCodecParams bool
	CodecName      string
	PixelFormat    string // pixfmt name, e.g. "yuv420p", "rgb24"
	Width          int
	Height         int

	// SampleAspectRatio is the stream-level pixel aspect; CodecAspectRatio the
	// bitstream-level one. Either may be zero when unknown.
	SampleAspectRatio rational.Rational
	CodecAspectRatio  rational.Rational

	TimeBase  rational.Rational
	FrameRate rational.Rational

	StartTime  int64 // stream time base, NoTimestamp when absent
	Duration   int64 // stream time base, NoTimestamp when absent
	FrameCount int64 // 0 when unknown

	// ContainerDuration is the movie duration in rational.TimeBaseQ units,
	// NoTimestamp when absent.
	ContainerDuration int64

	ColorSpace string // "bt709", "smpte170m", "bt2020nc", ... or empty
	ColorRange string // "tv", "pc" or empty

	// Extradata holds codec parameter sets as start code prefixed NAL units.
	Extradata []byte
}

// Packet is one compressed unit read from a container.
type Packet struct {
	StreamIndex int
	PTS         int64 // NoTimestamp when absent
	DTS         int64 // NoTimestamp when absent
	Keyframe    bool
	Data        []byte
}

// Picture is one decoded frame.
type Picture struct {
	Image       image.Image
	PixelFormat string
	PTS         int64
}

// Demuxer opens media files.
type Demuxer interface {
	// Open opens the named file and probes its streams.
	Open(filename string) (Container, error)
}

// Container is an opened media file.
type Container interface {
	// Streams returns every stream in the file, in container order.
	Streams() []StreamInfo

	// ReadPacket returns the next packet in file order. io.EOF at end of file.
	ReadPacket() (*Packet, error)

	// Seek repositions reading so that the next packet for streamIndex is at or
	// before timestamp (in that stream's time base).
	Seek(streamIndex int, timestamp int64) error

	// Close releases container resources.
	Close() error
}

// CodecCapabilities describes static properties of a codec.
type CodecCapabilities struct {
	Threads   bool // decoder can use more than one thread
	Delay     bool // decoder may hold frames and needs flushing at end of stream
	IntraOnly bool // every frame is independently decodable
}

// Codec creates decoders for one compression format.
type Codec interface {
	Name() string
	Capabilities() CodecCapabilities

	// Open creates a decoder for the given stream.
	Open(stream StreamInfo, threads int) (Decoder, error)
}

// CodecRegistry looks codecs up by name.
type CodecRegistry interface {
	Find(name string) (Codec, bool)
}

// Decoder decodes packets of one stream. Not safe for concurrent use.
type Decoder interface {
	// SendPacket feeds one packet. A nil packet requests a flush of held frames.
	SendPacket(pkt *Packet) error

	// ReceivePicture returns the next decoded picture, ErrAgain if none is ready.
	ReceivePicture() (*Picture, error)

	// Flush discards every held frame, used after seeking.
	Flush()

	// Delay is the codec's intrinsic decode delay in frames.
	Delay() int

	// BFrames is the number of reordered frames the decoder has discovered.
	BFrames() int

	// Close releases decoder resources.
	Close() error
}
