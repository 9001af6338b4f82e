package imagecodec

import (
	"fmt"

	"github.com/user/framereader/pkg/ports"
)

// Decoder decodes one still-image stream. Each packet yields its picture
// immediately, so there is never anything to flush.
type Decoder struct {
	codec   *Codec
	stream  ports.StreamInfo
	pending *ports.Picture
	closed  bool
}

// SendPacket decodes pkt. A nil packet is accepted and ignored.
func (d *Decoder) SendPacket(pkt *ports.Packet) error {
	if d.closed {
		return ErrDecoderClosed
	}
	if pkt == nil {
		return nil
	}
	if d.pending != nil {
		return ports.ErrAgain
	}

	img, err := d.codec.decode(pkt.Data, d.stream)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodeFailed, d.codec.name, err)
	}

	pts := pkt.PTS
	if pts == ports.NoTimestamp {
		pts = pkt.DTS
	}
	d.pending = &ports.Picture{
		Image:       img,
		PixelFormat: d.codec.pixelFormat,
		PTS:         pts,
	}
	return nil
}

// ReceivePicture returns the picture decoded by the last SendPacket.
func (d *Decoder) ReceivePicture() (*ports.Picture, error) {
	if d.closed {
		return nil, ErrDecoderClosed
	}
	if d.pending == nil {
		return nil, ports.ErrAgain
	}
	pic := d.pending
	d.pending = nil
	return pic, nil
}

// Flush drops a picture that was not received.
func (d *Decoder) Flush() {
	d.pending = nil
}

// Delay is always zero for intra-only codecs.
func (d *Decoder) Delay() int { return 0 }

// BFrames is always zero for intra-only codecs.
func (d *Decoder) BFrames() int { return 0 }

// Close releases the decoder.
func (d *Decoder) Close() error {
	d.closed = true
	d.pending = nil
	return nil
}

var _ ports.Decoder = (*Decoder)(nil)
