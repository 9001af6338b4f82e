package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framereader/pkg/adapters/ggrenderer"
	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/pipeline"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/stages/extract"
	"github.com/user/framereader/pkg/stages/sheet"
	"github.com/user/framereader/pkg/summarizer"
)

var errMissingFile = errors.New("a video file argument is required")

// fileArg returns the single FILE argument.
func fileArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", errMissingFile
	}
	return c.Args().First(), nil
}

func frameRange(c *cli.Context) pipeline.FrameRange {
	return pipeline.FrameRange{
		From:  c.Int("from"),
		To:    c.Int("to"),
		Every: c.Int("every"),
	}
}

// =============================================================================
// info
// =============================================================================

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Show stream information of a video file"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    l10n.T("Write the summary to a Markdown file instead of stdout"),
				Category: l10n.T("Output"),
			},
		},
		Action: runInfo,
	}
}

func runInfo(c *cli.Context) error {
	filename, err := fileArg(c)
	if err != nil {
		return err
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	file := e.registry.GetOrCreate(e, filename)

	var size int64
	if st, err := os.Stat(filename); err == nil {
		size = st.Size()
	}
	summary := summarizer.NewBuilder().
		WithFile(filename, size).
		WithReader(file).
		WithSettings(summarizer.SettingsFrom(e.caps)).
		Build()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)

	if path := c.String("output"); path != "" {
		if err := summarizer.NewWriter(formatter, e.fs).Write(path, summary); err != nil {
			e.log.Error("Failed to write summary: %s", err)
			return err
		}
		e.log.Info("Summary saved to %s", path)
	} else {
		fmt.Fprint(c.App.Writer, formatter.Format(summary))
	}

	if file.Invalid() {
		return file.Err()
	}
	return nil
}

// =============================================================================
// extract
// =============================================================================

func extractCommand() *cli.Command {
	flags := append(decodeFlags(),
		&cli.StringFlag{
			Name:     "out-dir",
			Aliases:  []string{"d"},
			Value:    "frames",
			Usage:    l10n.T("Directory for extracted frames"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "pattern",
			Value:    pipeline.DefaultNamePattern,
			Usage:    l10n.T("File name pattern; the extension selects PNG, JPEG or TIFF"),
			Category: l10n.T("Output"),
		},
	)
	return &cli.Command{
		Name:      "extract",
		Usage:     l10n.T("Write frames of a video file as images"),
		ArgsUsage: "FILE",
		Flags:     flags,
		Action:    runExtract,
	}
}

func runExtract(c *cli.Context) error {
	filename, err := fileArg(c)
	if err != nil {
		return err
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := e.signalContext()
	defer cancel()

	bar := newProgress(l10n.T("Extracting"), !e.quiet)
	stage := extract.NewStage(e.registry, e.fs, e.renderer, e.log)
	defer stage.Close()

	outDir := c.String("out-dir")
	result, err := stage.Execute(ctx, pipeline.ExtractInput{
		Filename:    filename,
		Range:       frameRange(c),
		OutDir:      outDir,
		NamePattern: c.String("pattern"),
		Decode:      e.decodeOptions(c),
		Progress:    bar.report,
	})
	bar.finish()
	if err != nil {
		return err
	}

	e.log.Info("Extracted %d frames to %s", len(result.Paths), outDir)
	return nil
}

// =============================================================================
// sheet
// =============================================================================

func sheetCommand() *cli.Command {
	flags := append(decodeFlags(),
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Value:    "sheet.png",
			Usage:    l10n.T("Output image path"),
			Category: l10n.T("Output"),
		},
		&cli.IntFlag{
			Name:     "columns",
			Usage:    l10n.T("Number of columns"),
			Category: l10n.T("Layout and Style"),
		},
		&cli.IntFlag{
			Name:     "thumb-width",
			Usage:    l10n.T("Thumbnail width in pixels"),
			Category: l10n.T("Layout and Style"),
		},
		&cli.BoolFlag{
			Name:     "labels",
			Usage:    l10n.T("Print the frame number under each thumbnail"),
			Category: l10n.T("Layout and Style"),
		},
		&cli.StringFlag{
			Name:     "background-color",
			Usage:    l10n.T("Background color (hex, e.g., #1a1a2e)"),
			Category: l10n.T("Layout and Style"),
		},
		&cli.BoolFlag{
			Name:     "fast",
			Usage:    l10n.T("Use faster, lower quality scaling"),
			Category: l10n.T("Layout and Style"),
		},
	)
	return &cli.Command{
		Name:      "sheet",
		Usage:     l10n.T("Render a contact sheet of a video file"),
		ArgsUsage: "FILE",
		Flags:     flags,
		Action:    runSheet,
	}
}

// sheetInput builds the sheet parameters from configuration and flags.
func sheetInput(c *cli.Context, sc config.SheetConfig) pipeline.SheetInput {
	if c.IsSet("columns") {
		sc.Columns = c.Int("columns")
	}
	if c.IsSet("thumb-width") {
		sc.ThumbWidth = c.Int("thumb-width")
	}
	if c.IsSet("background-color") {
		sc.BackgroundColor = c.String("background-color")
	}

	input := pipeline.DefaultSheetInput()
	input.Columns = sc.Columns
	input.ThumbWidth = sc.ThumbWidth
	input.Gap = sc.Gap
	input.Padding = sc.Padding
	input.BorderWidth = sc.BorderWidth
	input.Theme = pipeline.SheetTheme{
		BackgroundColor: config.ParseColor(sc.BackgroundColor),
		BorderColor:     config.ParseColor(sc.BorderColor),
		TextColor:       config.ParseColor(sc.TextColor),
	}
	if sc.LabelBackgroundColor != "" {
		input.Theme.LabelBackground = config.ParseColor(sc.LabelBackgroundColor)
	}
	if c.Bool("labels") {
		input.LabelHeight = 16
	}
	return input
}

// sheetRenderer picks the thumbnail scaler for a sheet.
func sheetRenderer(c *cli.Context, sc config.SheetConfig, standard ports.Renderer) ports.Renderer {
	if sc.Fast || c.Bool("fast") {
		return ggrenderer.NewFast()
	}
	return standard
}

func runSheet(c *cli.Context) error {
	filename, err := fileArg(c)
	if err != nil {
		return err
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := e.signalContext()
	defer cancel()

	input := sheetInput(c, e.cfg.Sheet)
	input.Filename = filename
	input.Range = frameRange(c)
	input.Decode = e.decodeOptions(c)

	bar := newProgress(l10n.T("Rendering"), !e.quiet)
	input.Progress = bar.report

	stage := sheet.NewStage(e.registry, sheetRenderer(c, e.cfg.Sheet, e.renderer), e.log, e.cfg.Sheet.Workers)
	defer stage.Close()

	result, err := stage.Execute(ctx, input)
	bar.finish()
	if err != nil {
		return err
	}

	output := c.String("output")
	data, err := e.renderer.EncodeImage(result.Image, ports.FormatFromPath(output), 90)
	if err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if err := e.fs.WriteFile(output, data); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}

	e.log.Info("Contact sheet of %d frames saved to %s", len(result.Frames), output)
	return nil
}
