// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/framereader/pkg/ports"
)

// DefaultAllowedCodecs are the codecs files are read with unless a config
// narrows or widens the list.
var DefaultAllowedCodecs = []string{
	"mjpeg", "png", "tiff", "bmp", "webp", "rawvideo",
	"h264", "hevc", "av1", "vp9", "prores",
}

// Config represents the full configuration for framereader.
type Config struct {
	// Reader
	AllowedCodecs      []string `yaml:"allowed_codecs"`
	MaxDecodeThreads   int      `yaml:"max_decode_threads"`
	MaxRetries         int      `yaml:"max_retries"`
	LoadNearest        bool     `yaml:"load_nearest"`
	ColorspaceOverride string   `yaml:"colorspace_override"`

	// FFmpegPath points at the ffmpeg used for H.264 and HEVC. Empty searches PATH.
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Contact sheet
	Sheet SheetConfig `yaml:"sheet"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// SheetConfig controls contact sheet rendering.
type SheetConfig struct {
	Columns         int    `yaml:"columns"`
	ThumbWidth      int    `yaml:"thumb_width"`
	Gap             int    `yaml:"gap"`
	Padding         int    `yaml:"padding"`
	BorderWidth     int    `yaml:"border_width"`
	Workers         int    `yaml:"workers"`
	BackgroundColor string `yaml:"background_color"`
	BorderColor     string `yaml:"border_color"`
	TextColor       string `yaml:"text_color"`

	// LabelBackgroundColor fills the plate behind frame labels. Empty draws none.
	LabelBackgroundColor string `yaml:"label_background_color"`

	// Fast resizes thumbnails with bilinear filtering instead of Catmull-Rom.
	Fast bool `yaml:"fast"`
}

// Capabilities is the subset of Config the decode engine consumes. It is
// built once at startup and passed to every file that is opened.
type Capabilities struct {
	AllowedCodecs      map[string]bool
	MaxDecodeThreads   int
	MaxRetries         int
	LoadNearest        bool
	ColorspaceOverride string
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		AllowedCodecs:    append([]string(nil), DefaultAllowedCodecs...),
		MaxDecodeThreads: 16,
		MaxRetries:       10,

		Sheet: SheetConfig{
			Columns:         4,
			ThumbWidth:      240,
			Gap:             8,
			Padding:         16,
			BorderWidth:     1,
			Workers:         4,
			BackgroundColor: "#1a1a2e",
			BorderColor:     "#333355",
			TextColor:       "#ffffff",

			LabelBackgroundColor: "#000000",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Capabilities converts Config to the decode engine's capabilities.
func (c Config) Capabilities() Capabilities {
	allowed := make(map[string]bool, len(c.AllowedCodecs))
	for _, name := range c.AllowedCodecs {
		allowed[name] = true
	}
	threads := c.MaxDecodeThreads
	if threads < 1 {
		threads = 1
	}
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return Capabilities{
		AllowedCodecs:      allowed,
		MaxDecodeThreads:   threads,
		MaxRetries:         retries,
		LoadNearest:        c.LoadNearest,
		ColorspaceOverride: c.ColorspaceOverride,
	}
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// DefaultCapabilities returns the capabilities of Defaults().
func DefaultCapabilities() Capabilities {
	return Defaults().Capabilities()
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return color.Black
	}

	channel := func(hi, lo byte) uint8 {
		return hexValue(hi)<<4 | hexValue(lo)
	}
	return color.RGBA{
		R: channel(hex[0], hex[1]),
		G: channel(hex[2], hex[3]),
		B: channel(hex[4], hex[5]),
		A: 255,
	}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
