package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framereader/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.MaxRetries != 10 {
		t.Errorf("expected 10 retries, got %d", cfg.MaxRetries)
	}
	if cfg.Sheet.Columns != 4 {
		t.Errorf("expected 4 columns, got %d", cfg.Sheet.Columns)
	}
	if cfg.Sheet.Fast || cfg.Sheet.LabelBackgroundColor != "#000000" {
		t.Errorf("unexpected sheet style defaults: %+v", cfg.Sheet)
	}

	caps := cfg.Capabilities()
	for _, name := range DefaultAllowedCodecs {
		if !caps.AllowedCodecs[name] {
			t.Errorf("expected %s to be allowed", name)
		}
	}
	if caps.AllowedCodecs["gif"] {
		t.Error("gif should not be allowed by default")
	}
}

func TestLoadFromFile_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framereader.yaml")
	data := `
allowed_codecs: [png, mjpeg]
max_retries: 3
load_nearest: true
log_level: debug
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
sheet:
  columns: 6
  fast: true
  label_background_color: ""
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.MaxRetries != 3 || !cfg.LoadNearest {
		t.Errorf("unexpected reader settings: %+v", cfg)
	}
	if cfg.Sheet.Columns != 6 {
		t.Errorf("expected 6 columns, got %d", cfg.Sheet.Columns)
	}
	if !cfg.Sheet.Fast || cfg.Sheet.LabelBackgroundColor != "" {
		t.Errorf("unexpected sheet style: %+v", cfg.Sheet)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("unexpected ffmpeg path %q", cfg.FFmpegPath)
	}
	// Unset keys keep their defaults.
	if cfg.Sheet.ThumbWidth != 240 {
		t.Errorf("expected default thumb width, got %d", cfg.Sheet.ThumbWidth)
	}
	if cfg.MaxDecodeThreads != 16 {
		t.Errorf("expected default thread cap, got %d", cfg.MaxDecodeThreads)
	}
	if cfg.Level() != ports.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}

	caps := cfg.Capabilities()
	if len(caps.AllowedCodecs) != 2 || !caps.AllowedCodecs["png"] {
		t.Errorf("unexpected allow-list %v", caps.AllowedCodecs)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg.MaxRetries != Defaults().MaxRetries {
		t.Error("expected defaults to be returned alongside the error")
	}
}

func TestCapabilities_Clamps(t *testing.T) {
	cfg := Defaults()
	cfg.MaxDecodeThreads = 0
	cfg.MaxRetries = -4
	caps := cfg.Capabilities()
	if caps.MaxDecodeThreads != 1 {
		t.Errorf("expected thread cap 1, got %d", caps.MaxDecodeThreads)
	}
	if caps.MaxRetries != 0 {
		t.Errorf("expected 0 retries, got %d", caps.MaxRetries)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{"1A2b3C", color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}},
		{"", color.Black},
		{"#fff", color.Black},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
