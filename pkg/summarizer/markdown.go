package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates every label through fn.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Media Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## %s\n\n", t("File"))
	f.tableHeader(&b)
	f.row(&b, "Path", "`"+s.File.Path+"`")
	if s.File.Size > 0 {
		f.row(&b, "File Size", formatBytes(s.File.Size))
	}
	if s.File.Error != "" {
		f.row(&b, "Status", t("Invalid")+": "+s.File.Error)
		b.WriteString("\n")
		f.footer(&b)
		return b.String()
	}
	b.WriteString("\n")

	st := s.Stream
	fmt.Fprintf(&b, "## %s\n\n", t("Video Stream"))
	f.tableHeader(&b)
	f.row(&b, "Codec", st.Codec)
	f.row(&b, "Resolution", fmt.Sprintf("%dx%d", st.Width, st.Height))
	if st.PixelAspect > 0 && st.PixelAspect != 1 {
		f.row(&b, "Pixel Aspect", fmt.Sprintf("%.4g", st.PixelAspect))
	}
	if st.FrameRate != "" {
		f.row(&b, "Frame Rate", fmt.Sprintf("%.3f fps (%s)", st.FPS, st.FrameRate))
	}
	f.row(&b, "Frame Count", fmt.Sprintf("%d", st.Frames))
	if st.Duration > 0 {
		f.row(&b, "Duration", st.Duration.Round(time.Millisecond).String())
	}
	f.row(&b, "Bit Depth", fmt.Sprintf("%d", st.BitDepth))
	f.row(&b, "Components", fmt.Sprintf("%d", st.Components))
	f.row(&b, "Colorspace", st.Colorspace)
	b.WriteString("\n")

	set := s.Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.tableHeader(&b)
	f.row(&b, "Max Decode Threads", fmt.Sprintf("%d", set.MaxDecodeThreads))
	f.row(&b, "Max Retries", fmt.Sprintf("%d", set.MaxRetries))
	f.row(&b, "Load Nearest", f.yesNo(set.LoadNearest))
	override := set.ColorspaceOverride
	if override == "" {
		override = t("None")
	}
	f.row(&b, "Colorspace Override", override)
	b.WriteString("\n")

	f.footer(&b)
	return b.String()
}

func (f *MarkdownFormatter) tableHeader(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

func (f *MarkdownFormatter) footer(b *strings.Builder) {
	b.WriteString("---\n\n")
	if f.version != "" {
		fmt.Fprintf(b, "%s framereader %s\n", f.translate("Generated by"), f.version)
	} else {
		fmt.Fprintf(b, "%s framereader\n", f.translate("Generated by"))
	}
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
