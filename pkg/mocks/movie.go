package mocks

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/Eyevinn/mp4ff/mp4"
)

// MovieTimescale is the track timescale of movies built by BuildPNGMovie.
const MovieTimescale = 25000

// MovieColor is the solid color of 1-based frame n in a BuildPNGMovie movie.
func MovieColor(n int) color.NRGBA {
	return color.NRGBA{R: uint8(n * 10), G: uint8(255 - n*10), B: 7, A: 255}
}

// BuildPNGMovie writes a fragmented MP4 with one PNG video track at 25 fps.
// Every sample is a sync sample filled with MovieColor of its frame number.
func BuildPNGMovie(frames, width, height int) ([]byte, error) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(MovieTimescale, "video", "en")
	trak := init.Moov.Trak

	pasp := &mp4.PaspBox{HSpacing: 1, VSpacing: 1}
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("png ", uint16(width), uint16(height), pasp))
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	const dur = MovieTimescale / 25
	for i := 0; i < frames; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		c := MovieColor(i + 1)
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}
		var sample bytes.Buffer
		if err := png.Encode(&sample, img); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i+1, err)
		}

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(sample.Len()),
				Dur:   dur,
			},
			DecodeTime: uint64(i * dur),
			Data:       sample.Bytes(),
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}
