package ffmpegcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/framereader/pkg/ports"
)

// Decoder feeds one stream's packets to an ffmpeg process and reads raw
// yuv420p frames back. ffmpeg outputs frames in presentation order, so each
// picture takes the smallest timestamp still pending.
type Decoder struct {
	codec   *Codec
	stream  ports.StreamInfo
	threads int

	proc     *process
	pending  []int64
	draining bool
	closed   bool
}

// SendPacket writes pkt to ffmpeg, starting it when needed. A nil packet
// closes ffmpeg's input so it emits every frame it holds.
func (d *Decoder) SendPacket(pkt *ports.Packet) error {
	if d.closed {
		return ErrDecoderClosed
	}
	if pkt == nil {
		if d.proc != nil && !d.draining {
			d.proc.stdin.Close()
			d.draining = true
		}
		return nil
	}
	if d.draining {
		d.reset()
	}
	if d.proc == nil {
		proc, err := d.start()
		if err != nil {
			return err
		}
		d.proc = proc
	}

	if _, err := d.proc.stdin.Write(avccToAnnexB(pkt.Data)); err != nil {
		return fmt.Errorf("%w: write packet: %v", ErrProcessExited, err)
	}

	pts := pkt.PTS
	if pts == ports.NoTimestamp {
		pts = pkt.DTS
	}
	i := sort.Search(len(d.pending), func(i int) bool { return d.pending[i] > pts })
	d.pending = append(d.pending, 0)
	copy(d.pending[i+1:], d.pending[i:])
	d.pending[i] = pts
	return nil
}

// ReceivePicture returns the next frame. Once more packets are pending than
// the decoder may hold, it waits for ffmpeg to catch up; while draining it
// waits for the next frame or the end of output.
func (d *Decoder) ReceivePicture() (*ports.Picture, error) {
	if d.closed {
		return nil, ErrDecoderClosed
	}
	if d.proc == nil {
		return nil, ports.ErrAgain
	}

	if d.draining || len(d.pending) > d.Delay() {
		d.proc.await(d.codec.timeout)
	}

	if img := d.proc.pop(); img != nil {
		pts := ports.NoTimestamp
		if len(d.pending) > 0 {
			pts = d.pending[0]
			d.pending = d.pending[1:]
		}
		return &ports.Picture{Image: img, PixelFormat: "yuv420p", PTS: pts}, nil
	}

	if d.proc.exited() {
		if d.draining {
			return nil, io.EOF
		}
		return nil, d.proc.failure()
	}
	return nil, ports.ErrAgain
}

// Flush stops ffmpeg and forgets pending packets. The next packet starts a
// fresh process, which is what a seek needs.
func (d *Decoder) Flush() {
	d.reset()
}

// Delay is the number of packets ffmpeg may consume before emitting a frame.
func (d *Decoder) Delay() int {
	return reorderDepth + d.threads
}

// BFrames is folded into Delay.
func (d *Decoder) BFrames() int { return 0 }

// Close stops ffmpeg.
func (d *Decoder) Close() error {
	d.reset()
	d.closed = true
	return nil
}

func (d *Decoder) reset() {
	if d.proc != nil {
		d.proc.stop()
		d.proc = nil
	}
	d.pending = nil
	d.draining = false
}

func (d *Decoder) start() (*process, error) {
	w, h := d.stream.Width, d.stream.Height
	cmd := exec.Command(d.codec.ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-threads", strconv.Itoa(d.threads),
		"-probesize", "32",
		"-analyzeduration", "0",
		"-fflags", "nobuffer",
		"-f", d.codec.format,
		"-i", "pipe:0",
		"-an",
		"-vsync", "passthrough",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-pix_fmt", "yuv420p",
		"-f", "rawvideo",
		"pipe:1",
	)

	p := &process{
		cmd:   cmd,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	cmd.Stderr = &p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	p.stdin = stdin

	go p.readFrames(stdout, w, h)

	if len(d.stream.Extradata) > 0 {
		if _, err := stdin.Write(d.stream.Extradata); err != nil {
			p.stop()
			return nil, fmt.Errorf("%w: write parameter sets: %v", ErrProcessExited, err)
		}
	}
	return p, nil
}

// process is one running ffmpeg.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	mu     sync.Mutex
	frames []*image.YCbCr

	ready chan struct{}
	done  chan struct{} // closed when stdout ends
	err   error         // read error, set before done is closed

	waitOnce sync.Once
	waitErr  error
}

// readFrames splits stdout into yuv420p frames.
func (p *process) readFrames(r io.Reader, w, h int) {
	defer close(p.done)

	cw, ch := (w+1)/2, (h+1)/2
	ySize, cSize := w*h, cw*ch
	for {
		buf := make([]byte, ySize+2*cSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				p.err = err
			}
			return
		}
		img := &image.YCbCr{
			Y:              buf[:ySize],
			Cb:             buf[ySize : ySize+cSize],
			Cr:             buf[ySize+cSize:],
			YStride:        w,
			CStride:        cw,
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           image.Rect(0, 0, w, h),
		}

		p.mu.Lock()
		p.frames = append(p.frames, img)
		p.mu.Unlock()

		select {
		case p.ready <- struct{}{}:
		default:
		}
	}
}

func (p *process) pop() *image.YCbCr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return nil
	}
	img := p.frames[0]
	p.frames = p.frames[1:]
	return img
}

func (p *process) available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames) > 0
}

// await blocks until a frame is available, output ends or timeout passes.
func (p *process) await(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for !p.available() {
		select {
		case <-p.ready:
		case <-p.done:
			return
		case <-timer.C:
			return
		}
	}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// failure describes why ffmpeg stopped producing output.
func (p *process) failure() error {
	p.wait()
	msg := strings.TrimSpace(p.stderr.String())
	switch {
	case p.err != nil:
		return fmt.Errorf("%w: %v", ErrProcessExited, p.err)
	case msg != "":
		return fmt.Errorf("%w: %s", ErrProcessExited, msg)
	case p.waitErr != nil:
		return fmt.Errorf("%w: %v", ErrProcessExited, p.waitErr)
	default:
		return ErrProcessExited
	}
}

func (p *process) wait() {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
}

func (p *process) stop() {
	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	<-p.done
	p.wait()
}

// avccToAnnexB converts length-prefixed NAL units to start code prefixed ones.
func avccToAnnexB(data []byte) []byte {
	result := make([]byte, 0, len(data)+16)
	offset := 0

	for offset+4 <= len(data) {
		naluLen := int(data[offset])<<24 | int(data[offset+1])<<16 |
			int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4

		if naluLen < 0 || offset+naluLen > len(data) {
			break
		}

		result = append(result, 0, 0, 0, 1)
		result = append(result, data[offset:offset+naluLen]...)
		offset += naluLen
	}

	return result
}

var _ ports.Decoder = (*Decoder)(nil)
