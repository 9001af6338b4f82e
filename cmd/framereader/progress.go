package main

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progress shows a frame counter on stderr. The bar is created on the first
// report, once the total is known, and only when stderr is a terminal.
type progress struct {
	mu      sync.Mutex
	label   string
	enabled bool
	bar     *progressbar.ProgressBar
}

func newProgress(label string, enabled bool) *progress {
	fd := os.Stderr.Fd()
	return &progress{
		label:   label,
		enabled: enabled && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}
}

// report implements pipeline.ProgressFunc.
func (p *progress) report(done, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions64(
			int64(total),
			progressbar.OptionSetDescription(p.label),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
