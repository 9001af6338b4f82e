package reader

import (
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

// farFrame is a frame index past the end of any real file, used to seek
// near the end when counting frames by scanning.
const farFrame = 1 << 29

// discoverStartTime returns the timestamp of the stream's first frame.
func (s *stream) discoverStartTime(c ports.Container, log ports.Logger) int64 {
	if s.info.StartTime != ports.NoTimestamp {
		return s.info.StartTime
	}

	if err := c.Seek(s.index, 0); err == nil {
		for {
			pkt, err := c.ReadPacket()
			if err != nil {
				break
			}
			if pkt.StreamIndex != s.index {
				continue
			}
			if ts := s.packetTS(pkt); ts != ports.NoTimestamp {
				return ts
			}
		}
	}

	log.Warn("Stream %d: no start time found, assuming 0", s.index)
	return 0
}

// discoverFrames estimates the number of frames in the stream, trying
// container metadata first and scanning the end of the file last.
func (s *stream) discoverFrames(c ports.Container, log ports.Logger) int64 {
	info := s.info

	if d := info.ContainerDuration; d != ports.NoTimestamp && d > 0 {
		// One time-base unit is subtracted because durations are often
		// rounded up when stored.
		frames := rational.MulDivCeil(d-1, s.fps.Num*rational.TimeBaseQ.Num, s.fps.Den*rational.TimeBaseQ.Den)
		if info.FrameCount > 0 && abs64(frames-info.FrameCount) <= 1 {
			frames = info.FrameCount
		}
		if frames > 0 {
			return frames
		}
	}

	if info.FrameCount > 0 {
		return info.FrameCount
	}

	if info.Duration != ports.NoTimestamp && info.Duration > 0 {
		frames := rational.MulDiv(info.Duration, s.timeBase.Num*s.fps.Num, s.timeBase.Den*s.fps.Den)
		if frames > 0 {
			return frames
		}
	}

	log.Debug("Stream %d: no frame count in metadata, scanning", s.index)
	if err := c.Seek(s.index, s.frameToTS(farFrame)); err != nil {
		log.Warn("Stream %d: unable to seek to end: %s", s.index, err)
		return 0
	}
	maxTS := ports.NoTimestamp
	for {
		pkt, err := c.ReadPacket()
		if err != nil {
			break
		}
		if pkt.StreamIndex != s.index {
			continue
		}
		if ts := s.packetTS(pkt); ts != ports.NoTimestamp && ts > maxTS {
			maxTS = ts
		}
	}
	if maxTS == ports.NoTimestamp {
		return 0
	}
	return 1 + s.tsToFrame(maxTS)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
