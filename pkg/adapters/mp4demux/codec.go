package mp4demux

import "github.com/Eyevinn/mp4ff/mp4"

// sampleEntry maps an ISOBMFF sample entry fourcc to a codec and the pixel
// format its decoder produces.
type sampleEntry struct {
	codec       string
	pixelFormat string
}

var sampleEntries = map[string]sampleEntry{
	"avc1": {codec: "h264", pixelFormat: "yuv420p"},
	"avc3": {codec: "h264", pixelFormat: "yuv420p"},
	"hvc1": {codec: "hevc", pixelFormat: "yuv420p"},
	"hev1": {codec: "hevc", pixelFormat: "yuv420p"},
	"av01": {codec: "av1", pixelFormat: "yuv420p"},
	"vp09": {codec: "vp9", pixelFormat: "yuv420p"},
	"apch": {codec: "prores", pixelFormat: "yuv422p10"},
	"apcn": {codec: "prores", pixelFormat: "yuv422p10"},
	"ap4h": {codec: "prores", pixelFormat: "yuv444p10"},
	"jpeg": {codec: "mjpeg", pixelFormat: "yuvj420p"},
	"mjpa": {codec: "mjpeg", pixelFormat: "yuvj420p"},
	"png ": {codec: "png", pixelFormat: "rgba"},
	"tiff": {codec: "tiff", pixelFormat: "rgba"},
	"bmp ": {codec: "bmp", pixelFormat: "rgb24"},
	"webp": {codec: "webp", pixelFormat: "yuv420p"},
	"raw ": {codec: "rawvideo", pixelFormat: "rgb24"},
	"mp4a": {codec: "aac"},
	"Opus": {codec: "opus"},
}

// describeTrack returns the codec, pixel format and visual sample entry (nil
// for entries mp4ff does not parse) of a track.
func describeTrack(trak *mp4.TrakBox) (sampleEntry, *mp4.VisualSampleEntryBox, bool) {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return sampleEntry{}, nil, false
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		entry, ok := sampleEntries[child.Type()]
		if !ok {
			continue
		}
		vse, _ := child.(*mp4.VisualSampleEntryBox)
		return entry, vse, true
	}
	return sampleEntry{}, nil, false
}

// parameterSets returns the AVC or HEVC parameter sets of vse in Annex B form.
func parameterSets(vse *mp4.VisualSampleEntryBox) []byte {
	var nalus [][]byte
	switch {
	case vse.AvcC != nil:
		nalus = append(nalus, vse.AvcC.SPSnalus...)
		nalus = append(nalus, vse.AvcC.PPSnalus...)
	case vse.HvcC != nil:
		for _, arr := range vse.HvcC.NaluArrays {
			nalus = append(nalus, arr.Nalus...)
		}
	}

	var out []byte
	for _, nalu := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, nalu...)
	}
	return out
}
