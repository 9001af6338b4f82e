package mp4demux

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/rational"
)

func (c *Container) indexProgressive(mp4File *mp4.File) error {
	if mp4File.Moov == nil {
		return ErrNoMoov
	}

	containerDuration := ports.NoTimestamp
	if mvhd := mp4File.Moov.Mvhd; mvhd != nil && mvhd.Timescale > 0 && mvhd.Duration > 0 {
		containerDuration = rational.MulDiv(int64(mvhd.Duration), 1000000, int64(mvhd.Timescale))
	}

	for i, trak := range mp4File.Moov.Traks {
		t := &track{info: describeStream(i, trak)}
		t.info.ContainerDuration = containerDuration

		if trak.Mdia != nil && trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil {
			samples, err := progressiveSamples(trak.Mdia.Minf.Stbl)
			if err != nil {
				return fmt.Errorf("track %d: %w", trak.Tkhd.TrackID, err)
			}
			t.samples = samples
		}
		c.addTrack(t, trak)
	}
	return nil
}

func (c *Container) indexFragmented(mp4File *mp4.File) error {
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return ErrNoMoov
	}
	moov := mp4File.Init.Moov

	byID := make(map[uint32]*track)
	trexs := make(map[uint32]*mp4.TrexBox)
	if moov.Mvex != nil {
		for _, trex := range moov.Mvex.Trexs {
			trexs[trex.TrackID] = trex
		}
	}

	var traks []*mp4.TrakBox
	for i, trak := range moov.Traks {
		t := &track{info: describeStream(i, trak)}
		byID[trak.Tkhd.TrackID] = t
		traks = append(traks, trak)
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				t, ok := byID[traf.Tfhd.TrackID]
				if !ok {
					continue
				}

				var baseDecodeTime uint64
				if traf.Tfdt != nil {
					baseDecodeTime = traf.Tfdt.BaseMediaDecodeTime()
				}

				fullSamples, err := frag.GetFullSamples(trexs[traf.Tfhd.TrackID])
				if err != nil {
					return fmt.Errorf("get samples: %w", err)
				}

				currentTime := baseDecodeTime
				for _, fs := range fullSamples {
					dts := int64(currentTime)
					t.samples = append(t.samples, sample{
						size: uint32(len(fs.Data)),
						dts:  dts,
						pts:  dts + int64(fs.CompositionTimeOffset),
						sync: mp4.IsSyncSampleFlags(fs.Flags),
						data: fs.Data,
					})
					currentTime += uint64(fs.Dur)
				}
			}
		}
	}

	// Fragmented files rarely carry durations in moov; derive them from samples.
	for i, trak := range traks {
		t := byID[trak.Tkhd.TrackID]
		if n := len(t.samples); n > 0 {
			last := t.samples[n-1]
			dur := last.dts - t.samples[0].dts
			if n > 1 {
				dur += (last.dts - t.samples[0].dts) / int64(n-1)
			}
			t.info.Duration = dur
			if t.info.TimeBase.Valid() {
				t.info.ContainerDuration = rational.Rescale(dur, t.info.TimeBase, rational.TimeBaseQ)
			}
		}
		t.info.Index = i
		c.addTrack(t, trak)
	}
	return nil
}

// addTrack finalises sample-derived stream fields and appends t.
func (c *Container) addTrack(t *track, trak *mp4.TrakBox) {
	t.positions = make([]int, len(t.samples))
	t.info.FrameCount = int64(len(t.samples))

	if len(t.samples) > 0 && t.info.StartTime == ports.NoTimestamp {
		start := t.samples[0].pts
		for _, s := range t.samples {
			if s.pts < start {
				start = s.pts
			}
		}
		t.info.StartTime = start
	}

	if !t.info.FrameRate.Valid() && len(t.samples) > 1 && t.info.Duration > 0 {
		t.info.FrameRate = rational.New(int64(len(t.samples))*t.info.TimeBase.Den, t.info.Duration).Reduce()
	}

	c.tracks = append(c.tracks, t)
}

// describeStream fills the fields available from the track header boxes.
func describeStream(index int, trak *mp4.TrakBox) ports.StreamInfo {
	info := ports.StreamInfo{
		Index:             index,
		StartTime:         ports.NoTimestamp,
		Duration:          ports.NoTimestamp,
		ContainerDuration: ports.NoTimestamp,
	}

	if trak.Mdia == nil {
		return info
	}
	if hdlr := trak.Mdia.Hdlr; hdlr != nil {
		switch hdlr.HandlerType {
		case "vide":
			info.MediaType = ports.MediaVideo
		case "soun":
			info.MediaType = ports.MediaAudio
		default:
			info.MediaType = ports.MediaData
		}
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.TimeBase = rational.New(1, int64(mdhd.Timescale))
		if mdhd.Duration > 0 {
			info.Duration = int64(mdhd.Duration)
		}
	}

	entry, vse, ok := describeTrack(trak)
	if ok {
		info.HasCodecParams = true
		info.CodecName = entry.codec
		info.PixelFormat = entry.pixelFormat
	}
	if vse != nil {
		info.Width = int(vse.Width)
		info.Height = int(vse.Height)
		if vse.Pasp != nil && vse.Pasp.VSpacing > 0 {
			info.CodecAspectRatio = rational.New(int64(vse.Pasp.HSpacing), int64(vse.Pasp.VSpacing))
		}
		info.Extradata = parameterSets(vse)
	}
	if info.Width == 0 && trak.Tkhd != nil {
		info.Width = int(uint32(trak.Tkhd.Width) >> 16)
		info.Height = int(uint32(trak.Tkhd.Height) >> 16)
	}

	if trak.Edts != nil && len(trak.Edts.Elst) > 0 {
		for _, e := range trak.Edts.Elst[0].Entries {
			if e.MediaTime >= 0 {
				info.StartTime = e.MediaTime
				break
			}
		}
	}

	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil {
		if stts := trak.Mdia.Minf.Stbl.Stts; stts != nil && len(stts.SampleTimeDelta) == 1 && stts.SampleTimeDelta[0] > 0 && info.TimeBase.Valid() {
			info.FrameRate = rational.New(info.TimeBase.Den, int64(stts.SampleTimeDelta[0])).Reduce()
		}
	}
	return info
}

// progressiveSamples builds the sample index from a sample table.
func progressiveSamples(stbl *mp4.StblBox) ([]sample, error) {
	if stbl.Stsz == nil || stbl.Stsc == nil {
		return nil, nil
	}
	count := stbl.Stsz.SampleNumber

	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}

	samples := make([]sample, 0, count)
	for nr := uint32(1); nr <= count; nr++ {
		offset, err := sampleOffset(stbl, nr)
		if err != nil {
			return nil, err
		}

		var dts int64
		if stbl.Stts != nil {
			decodeTime, _ := stbl.Stts.GetDecodeTime(nr)
			dts = int64(decodeTime)
		}
		pts := dts
		if stbl.Ctts != nil {
			pts += int64(stbl.Ctts.GetCompositionTimeOffset(nr))
		}

		samples = append(samples, sample{
			offset: offset,
			size:   stbl.Stsz.GetSampleSize(int(nr)),
			dts:    dts,
			pts:    pts,
			sync:   syncSamples[nr] || len(syncSamples) == 0,
		})
	}
	return samples, nil
}

// sampleOffset returns the file offset of sample nr (1-based).
func sampleOffset(stbl *mp4.StblBox, nr uint32) (uint64, error) {
	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(nr))
	if err != nil {
		return 0, fmt.Errorf("get chunk nr: %w", err)
	}

	var chunkOffset uint64
	switch {
	case stbl.Stco != nil:
		chunkOffset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return 0, fmt.Errorf("get chunk offset: %w", err)
		}
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return 0, fmt.Errorf("chunk nr %d out of range", chunkNr)
		}
		chunkOffset = stbl.Co64.ChunkOffset[chunkNr-1]
	default:
		return 0, fmt.Errorf("no stco or co64 box")
	}

	offset := chunkOffset
	for s := uint32(firstSampleInChunk); s < nr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}
	return offset, nil
}
