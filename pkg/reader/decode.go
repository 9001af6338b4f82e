package reader

import (
	"context"
	"errors"
	"io"

	"github.com/user/framereader/pkg/ports"
)

var errClosed = errors.New("file is closed")

// DecodeOptions control out-of-range handling and stall recovery.
type DecodeOptions struct {
	// LoadNearest clamps out-of-range requests to the first or last frame
	// instead of failing with ErrMissingFrame.
	LoadNearest bool
	// MaxRetries is how many times a stalled decode restarts from a fresh seek.
	MaxRetries int
}

// Decode returns 1-based frame number frame of the first video stream.
//
// Frames are identified by counting decoder output from a resolved seek
// landing, so the buffer holds the frame's display position in the file no
// matter how the codec reorders or delays pictures.
//
// A cancelled ctx makes Decode return (nil, nil). Every failure is an
// *Error and leaves the File ready for the next call, which will seek.
func (f *File) Decode(ctx context.Context, frame int, opts DecodeOptions) (*Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.invalid {
		return nil, newError(KindInvalidFile, frame, f.err)
	}
	if f.closed || len(f.streams) == 0 {
		return nil, newError(KindInvalidFile, frame, errClosed)
	}
	if ctx.Err() != nil {
		return nil, nil
	}

	run := &decodeRun{
		ctx:        ctx,
		file:       f,
		s:          f.streams[0],
		opts:       opts,
		frame:      frame,
		desired:    int64(frame) - 1,
		retries:    max(opts.MaxRetries, 0),
		lastSeeked: unknownFrame,
		landing:    unknownFrame,
	}
	buf, err := run.decode()
	if err != nil {
		f.log.Debug("Decoding frame %d failed after %d seeks: %s", frame, run.seeks, err)
		run.s.resetCursors()
		return nil, err
	}
	return buf, nil
}

// decodeRun is the state of one Decode call.
type decodeRun struct {
	ctx   context.Context
	file  *File
	s     *stream
	opts  DecodeOptions
	frame int

	// desired is the 0-based frame to return.
	desired int64
	retries int
	// lastSeeked is the frame the last seek aimed at; landing the frame it
	// resolved to, unknownFrame until the first packet arrives.
	lastSeeked int64
	landing    int64
	// awaitingFirstDecode is set by a seek and cleared by the first picture.
	awaitingFirstDecode bool
	seeks               int
}

func (r *decodeRun) decode() (*Buffer, error) {
	s := r.s

	if r.desired < 0 {
		if !r.opts.LoadNearest {
			return nil, r.fail(KindMissingFrame, nil)
		}
		r.desired = 0
	}
	if r.desired >= s.frames {
		if !r.opts.LoadNearest || s.frames <= 0 {
			return nil, r.fail(KindMissingFrame, nil)
		}
		r.desired = s.frames - 1
	}

	if r.desired != s.nextFrameOut {
		if err := r.seek(r.desired); err != nil {
			return nil, err
		}
	}

	for {
		if r.ctx.Err() != nil {
			return nil, nil
		}

		if s.nextFrameIn < s.frames {
			pkt, err := r.file.container.ReadPacket()
			if errors.Is(err, io.EOF) {
				if err := r.endOfFile(); err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				return nil, r.fail(KindRead, err)
			}
			if pkt.StreamIndex != s.index {
				continue
			}
			if pkt.PTS != ports.NoTimestamp {
				s.ptsSeen = true
			}

			if s.nextFrameIn == unknownFrame {
				landed, err := r.land(pkt)
				if err != nil {
					return nil, err
				}
				if !landed {
					continue
				}
			}

			if err := s.decoder.SendPacket(pkt); err != nil {
				return nil, r.fail(KindDecode, err)
			}
			s.nextFrameIn++
		} else if !s.codecCaps.IntraOnly {
			if err := s.decoder.SendPacket(nil); err != nil {
				return nil, r.fail(KindDecode, err)
			}
		}

		pic, err := s.decoder.ReceivePicture()
		if err != nil && !errors.Is(err, ports.ErrAgain) && !errors.Is(err, io.EOF) {
			return nil, r.fail(KindDecode, err)
		}

		if pic != nil {
			r.awaitingFirstDecode = false
			out := s.nextFrameOut
			s.nextFrameOut++
			if out == r.desired {
				buf, err := r.file.convert(s, pic, r.desired)
				if err != nil {
					return nil, r.fail(KindDecode, err)
				}
				return buf, nil
			}
			continue
		}

		s.accumLatency++
		if s.accumLatency > s.stallThreshold() {
			if err := r.stall(); err != nil {
				return nil, err
			}
		}
	}
}

// seek positions the container before frame and forgets the decode position.
func (r *decodeRun) seek(frame int64) error {
	s := r.s
	r.seeks++
	r.lastSeeked = frame
	r.landing = unknownFrame
	r.awaitingFirstDecode = true
	s.nextFrameIn = unknownFrame
	s.nextFrameOut = unknownFrame
	s.accumLatency = 0
	if s.codecCaps.Delay {
		s.decoder.Flush()
	}

	r.file.log.Debug("Seeking to frame %d", frame)
	if err := r.file.container.Seek(s.index, s.frameToTS(frame)); err != nil {
		return r.fail(KindSeek, err)
	}
	return nil
}

// land resolves the seek landing from the first packet of the stream. It
// reports false when the landing was unusable and a new seek was issued.
func (r *decodeRun) land(pkt *ports.Packet) (bool, error) {
	s := r.s
	ts := s.packetTS(pkt)
	if ts == ports.NoTimestamp {
		r.file.log.Debug("Seek to frame %d landed on a packet without timestamp", r.lastSeeked)
		return false, r.stepBack()
	}
	landing := s.tsToFrame(ts)
	if landing < 0 || landing > r.lastSeeked {
		r.file.log.Debug("Seek to frame %d landed on frame %d", r.lastSeeked, landing)
		return false, r.stepBack()
	}

	r.landing = landing
	s.nextFrameIn = landing
	s.nextFrameOut = landing
	return true, nil
}

// stepBack retries a seek that did not land at or before its target one
// frame earlier. At frame 0 it gives presentation timestamps up in favour of
// decode timestamps if none were ever seen.
func (r *decodeRun) stepBack() error {
	s := r.s
	if r.lastSeeked > 0 {
		return r.seek(r.lastSeeked - 1)
	}
	if !s.useDTS && !s.ptsSeen {
		s.useDTS = true
		r.file.log.Warn("Stream %d has no presentation timestamps, using decode timestamps", s.index)
		return r.seek(r.desired)
	}
	return r.fail(KindTimingReference, nil)
}

// endOfFile handles the container running out of packets. The frame count
// is corrected downward and never grows back.
func (r *decodeRun) endOfFile() error {
	s := r.s
	if s.nextFrameIn == unknownFrame {
		r.file.log.Debug("End of file before seek to frame %d landed", r.lastSeeked)
		return r.stepBack()
	}

	if s.nextFrameIn < s.frames {
		r.file.log.Warn("Stream %d ended after %d frames, expected %d", s.index, s.nextFrameIn, s.frames)
		s.frames = s.nextFrameIn
	}
	if r.desired < s.frames {
		// The desired frame is still in the decoder; drain it.
		return nil
	}
	if r.opts.LoadNearest && s.frames > 0 {
		r.desired = s.frames - 1
		return r.seek(r.desired)
	}
	return r.fail(KindMissingFrame, nil)
}

// stall handles a decoder holding more frames than its declared delay.
func (r *decodeRun) stall() error {
	s := r.s
	if r.awaitingFirstDecode {
		if r.landing > 0 {
			r.file.log.Debug("Stream %d stalled after seek, retrying before frame %d", s.index, r.landing)
			return r.seek(r.landing - 1)
		}
		if r.retries > 0 {
			r.retries--
			return r.seek(r.desired)
		}
		return r.fail(KindTimingReference, nil)
	}

	r.file.log.Debug("Stream %d stalled at frame %d, %d retries left", s.index, s.nextFrameOut, r.retries)
	if r.retries > 0 {
		r.retries--
		return r.seek(r.desired)
	}
	return r.fail(KindDecodeStall, nil)
}

func (r *decodeRun) fail(kind ErrorKind, err error) error {
	return newError(kind, r.frame, err)
}

// convert turns a decoded picture into the output buffer.
func (f *File) convert(s *stream, pic *ports.Picture, frame int64) (*Buffer, error) {
	conv, err := s.conversion(pic, f.scaleWidth, f.scaleHeight, f.colorspaceOverride)
	if err != nil {
		return nil, err
	}
	pix, stride, err := conv.Convert(pic.Image)
	if err != nil {
		return nil, err
	}
	key := conv.Key()
	return &Buffer{
		Width:  key.DstWidth,
		Height: key.DstHeight,
		Layout: key.Layout,
		Stride: stride,
		Pix:    pix,
		Frame:  int(frame) + 1,
	}, nil
}
