package summarizer

import (
	"fmt"

	"github.com/user/framereader/pkg/ports"
)

// Formatter renders a Summary as report text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function act as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }

// Writer saves rendered summaries through a ports.FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write renders summary and replaces path with the result.
func (w *Writer) Write(path string, summary *Summary) error {
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
