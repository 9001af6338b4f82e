// Package ffmpegcodec decodes inter-coded streams (H.264, HEVC) by piping
// Annex B bitstreams through an external ffmpeg process.
package ffmpegcodec

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH.
	ErrFFmpegNotFound = errors.New("ffmpegcodec: ffmpeg not found in PATH")

	// ErrDecoderClosed is returned when a closed decoder is used.
	ErrDecoderClosed = errors.New("ffmpegcodec: decoder closed")

	// ErrProcessExited is returned when ffmpeg exits while packets are pending.
	ErrProcessExited = errors.New("ffmpegcodec: ffmpeg exited")
)

// FindFFmpeg searches for ffmpeg. A non-empty custom path is used as is and
// must exist; otherwise PATH and common install locations are searched.
func FindFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}
