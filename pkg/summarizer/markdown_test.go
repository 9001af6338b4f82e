package summarizer

import (
	"strings"
	"testing"
	"time"
)

func fullSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		File: FileInfo{
			Path: "clips/interview.mov",
			Size: 3 * 1024 * 1024,
		},
		Stream: StreamInfo{
			Codec:       "prores",
			Width:       1920,
			Height:      1080,
			PixelAspect: 1,
			FrameRate:   "24000/1001",
			FPS:         24000.0 / 1001.0,
			Frames:      240,
			Duration:    10010 * time.Millisecond,
			BitDepth:    10,
			Components:  3,
			Colorspace:  "Rec709",
		},
		Settings: Settings{
			MaxDecodeThreads: 16,
			MaxRetries:       10,
			LoadNearest:      true,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(fullSummary())

	checks := []string{
		"# Media Summary",
		"2024-01-15 10:30:00 UTC",
		"`clips/interview.mov`",
		"3.00 MB",
		"| Codec | prores |",
		"1920x1080",
		"23.976 fps (24000/1001)",
		"| Frame Count | 240 |",
		"10.01s",
		"| Bit Depth | 10 |",
		"Rec709",
		"| Max Retries | 10 |",
		"| Load Nearest | Yes |",
		"| Colorspace Override | None |",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}

	// Square pixels are not worth a row.
	if strings.Contains(result, "Pixel Aspect") {
		t.Error("output should NOT contain 'Pixel Aspect' for square pixels")
	}
}

func TestMarkdownFormatter_Format_Anamorphic(t *testing.T) {
	summary := fullSummary()
	summary.Stream.PixelAspect = 16.0 / 11.0
	summary.Settings.ColorspaceOverride = "Rec601"

	result := NewMarkdownFormatter().Format(summary)

	if !strings.Contains(result, "| Pixel Aspect | 1.455 |") {
		t.Error("expected output to contain the pixel aspect")
	}
	if !strings.Contains(result, "| Colorspace Override | Rec601 |") {
		t.Error("expected output to contain the colorspace override")
	}
}

func TestMarkdownFormatter_Format_InvalidFile(t *testing.T) {
	summary := &Summary{
		GeneratedAt: time.Now(),
		File: FileInfo{
			Path:  "broken.mov",
			Error: "broken.mov: no video stream",
		},
	}

	result := NewMarkdownFormatter().Format(summary)

	if !strings.Contains(result, "| Status | Invalid: broken.mov: no video stream |") {
		t.Error("expected output to contain the open error")
	}
	if strings.Contains(result, "Video Stream") {
		t.Error("output should NOT contain a stream section for an invalid file")
	}
	if !strings.Contains(result, "Generated by framereader") {
		t.Error("expected footer for an invalid file")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Media Summary": "メディア概要",
			"Frame Count":   "フレーム数",
			"Yes":           "はい",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(fullSummary())

	for _, want := range []string{"メディア概要", "| フレーム数 | 240 |", "はい"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(fullSummary())

	if !strings.Contains(result, "framereader v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestMarkdownFormatter_NoFrameRate(t *testing.T) {
	summary := fullSummary()
	summary.Stream.FrameRate = ""
	summary.Stream.Duration = 0

	result := NewMarkdownFormatter().Format(summary)

	if strings.Contains(result, "Frame Rate") || strings.Contains(result, "| Duration |") {
		t.Error("output should NOT contain rate or duration when the rate is unknown")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
