// Package mp4demux implements ports.Demuxer for MP4/MOV files using mp4ff.
// Progressive files are read lazily from disk; fragmented files are loaded
// into memory when opened.
package mp4demux

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

var (
	// ErrNoMoov is returned when a file has no movie box.
	ErrNoMoov = errors.New("mp4demux: no moov box found")

	// ErrBadStream is returned when seeking on an unknown stream index.
	ErrBadStream = errors.New("mp4demux: no such stream")
)

// Demuxer opens MP4 files.
type Demuxer struct{}

// New creates a new Demuxer.
func New() *Demuxer {
	return &Demuxer{}
}

// Open parses filename and indexes every track's samples.
func (d *Demuxer) Open(filename string) (ports.Container, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	c, err := NewContainer(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

// sample is one indexed sample of a track.
type sample struct {
	offset uint64
	size   uint32
	dts    int64
	pts    int64
	sync   bool
	data   []byte // set for fragmented files
}

// track is the sample index of one trak.
type track struct {
	info    ports.StreamInfo
	samples []sample
	// position of each sample in Container.order
	positions []int
}

// Container implements ports.Container over a parsed MP4 file.
type Container struct {
	reader io.ReadSeeker
	closer io.Closer
	tracks []*track
	order  []packetRef // every sample of every track in file order
	cursor int
}

type packetRef struct {
	track  int
	sample int
}

// NewContainer parses an MP4 from reader. The reader must stay valid until Close.
func NewContainer(reader io.ReadSeeker) (*Container, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	c := &Container{reader: reader}
	if mp4File.IsFragmented() {
		err = c.indexFragmented(mp4File)
	} else {
		err = c.indexProgressive(mp4File)
	}
	if err != nil {
		return nil, err
	}

	c.buildOrder(mp4File.IsFragmented())
	return c, nil
}

// Streams returns every track as a stream.
func (c *Container) Streams() []ports.StreamInfo {
	infos := make([]ports.StreamInfo, len(c.tracks))
	for i, t := range c.tracks {
		infos[i] = t.info
	}
	return infos
}

// ReadPacket returns the next sample in file order.
func (c *Container) ReadPacket() (*ports.Packet, error) {
	if c.cursor >= len(c.order) {
		return nil, io.EOF
	}
	ref := c.order[c.cursor]
	c.cursor++

	t := c.tracks[ref.track]
	s := t.samples[ref.sample]

	data := s.data
	if data == nil {
		var err error
		data, err = c.readSample(s)
		if err != nil {
			return nil, err
		}
	}

	return &ports.Packet{
		StreamIndex: ref.track,
		PTS:         s.pts,
		DTS:         s.dts,
		Keyframe:    s.sync,
		Data:        data,
	}, nil
}

// Seek positions reading at the last sync sample of streamIndex whose
// presentation time is at or before timestamp. A timestamp before the first
// sync sample lands on the first one.
func (c *Container) Seek(streamIndex int, timestamp int64) error {
	if streamIndex < 0 || streamIndex >= len(c.tracks) {
		return fmt.Errorf("%w: %d", ErrBadStream, streamIndex)
	}
	t := c.tracks[streamIndex]
	if len(t.samples) == 0 {
		c.cursor = len(c.order)
		return nil
	}

	landing := -1
	first := -1
	for i, s := range t.samples {
		if !s.sync {
			continue
		}
		if first < 0 {
			first = i
		}
		if s.pts <= timestamp {
			landing = i
		}
	}
	if landing < 0 {
		landing = first
	}
	if landing < 0 {
		landing = 0
	}

	c.cursor = t.positions[landing]
	return nil
}

// Close releases the underlying file.
func (c *Container) Close() error {
	c.order = nil
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

func (c *Container) readSample(s sample) ([]byte, error) {
	if _, err := c.reader.Seek(int64(s.offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to sample: %w", err)
	}
	data := make([]byte, s.size)
	if _, err := io.ReadFull(c.reader, data); err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	return data, nil
}

// buildOrder interleaves samples by file offset (progressive) or by
// fragment order (fragmented, already in that order per track) with
// decode time as the tie breaker.
func (c *Container) buildOrder(fragmented bool) {
	c.order = c.order[:0]
	for ti, t := range c.tracks {
		for si := range t.samples {
			c.order = append(c.order, packetRef{track: ti, sample: si})
		}
	}

	sort.SliceStable(c.order, func(i, j int) bool {
		a := c.tracks[c.order[i].track].samples[c.order[i].sample]
		b := c.tracks[c.order[j].track].samples[c.order[j].sample]
		if !fragmented && a.offset != b.offset {
			return a.offset < b.offset
		}
		ta := rational.Rescale(a.dts, c.tracks[c.order[i].track].info.TimeBase, rational.TimeBaseQ)
		tb := rational.Rescale(b.dts, c.tracks[c.order[j].track].info.TimeBase, rational.TimeBaseQ)
		return ta < tb
	})

	for pos, ref := range c.order {
		c.tracks[ref.track].positions[ref.sample] = pos
	}
}

var _ ports.Demuxer = (*Demuxer)(nil)
var _ ports.Container = (*Container)(nil)
