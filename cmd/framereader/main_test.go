package main

import (
	"bytes"
	"errors"
	"image/color"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/framereader/pkg/adapters/ggrenderer"
	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/pipeline"
	"github.com/user/framereader/pkg/reader"
)

// runWith replaces the action of cmd and runs it with args.
func runWith(t *testing.T, cmd *cli.Command, action cli.ActionFunc, args ...string) {
	t.Helper()
	cmd.Action = action
	app := &cli.App{Name: "framereader", Commands: []*cli.Command{cmd}}
	if err := app.Run(append([]string{"framereader", cmd.Name}, args...)); err != nil {
		t.Fatalf("run %s: %v", cmd.Name, err)
	}
}

func TestInfo_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mp4")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"framereader", "--quiet", "info", path})
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
	if !strings.Contains(out.String(), "`"+path+"`") {
		t.Errorf("expected the summary to name the file, got %q", out.String())
	}
}

func TestCommands_RequireFile(t *testing.T) {
	for _, name := range []string{"info", "extract", "sheet"} {
		t.Run(name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			err := app.Run([]string{"framereader", "--quiet", name})
			if !errors.Is(err, errMissingFile) {
				t.Errorf("expected errMissingFile, got %v", err)
			}
		})
	}
}

func TestFrameRange(t *testing.T) {
	var got pipeline.FrameRange
	runWith(t, extractCommand(), func(c *cli.Context) error {
		got = frameRange(c)
		return nil
	}, "--from", "10", "--to", "20", "--every", "5", "clip.mp4")

	want := pipeline.FrameRange{From: 10, To: 20, Every: 5}
	if got != want {
		t.Errorf("frameRange() = %+v, want %+v", got, want)
	}
}

func TestDecodeOptions(t *testing.T) {
	e := &env{caps: config.DefaultCapabilities()}

	var defaults, overridden reader.DecodeOptions
	runWith(t, extractCommand(), func(c *cli.Context) error {
		defaults = e.decodeOptions(c)
		return nil
	}, "clip.mp4")
	runWith(t, extractCommand(), func(c *cli.Context) error {
		overridden = e.decodeOptions(c)
		return nil
	}, "--nearest", "--retries=-4", "clip.mp4")

	if defaults.LoadNearest || defaults.MaxRetries != e.caps.MaxRetries {
		t.Errorf("expected configured defaults, got %+v", defaults)
	}
	if !overridden.LoadNearest || overridden.MaxRetries != 0 {
		t.Errorf("expected nearest and clamped retries, got %+v", overridden)
	}
}

func TestSheetInput(t *testing.T) {
	sc := config.Defaults().Sheet

	var plain, custom pipeline.SheetInput
	runWith(t, sheetCommand(), func(c *cli.Context) error {
		plain = sheetInput(c, sc)
		return nil
	}, "clip.mp4")
	runWith(t, sheetCommand(), func(c *cli.Context) error {
		custom = sheetInput(c, sc)
		return nil
	}, "--columns", "6", "--thumb-width", "120", "--labels", "--background-color", "#ff0000", "clip.mp4")

	if plain.Columns != sc.Columns || plain.ThumbWidth != sc.ThumbWidth || plain.LabelHeight != 0 {
		t.Errorf("expected configured layout, got %+v", plain)
	}
	if custom.Columns != 6 || custom.ThumbWidth != 120 || custom.LabelHeight == 0 {
		t.Errorf("expected flag overrides, got %+v", custom)
	}
	if custom.Theme.BackgroundColor != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("unexpected background %v", custom.Theme.BackgroundColor)
	}
	if plain.Theme.LabelBackground != (color.RGBA{A: 255}) {
		t.Errorf("expected a black label plate, got %v", plain.Theme.LabelBackground)
	}

	sc.LabelBackgroundColor = ""
	runWith(t, sheetCommand(), func(c *cli.Context) error {
		plain = sheetInput(c, sc)
		return nil
	}, "clip.mp4")
	if plain.Theme.LabelBackground != nil {
		t.Errorf("expected no label plate, got %v", plain.Theme.LabelBackground)
	}
}

func TestSheetRenderer(t *testing.T) {
	standard := ggrenderer.New()
	tests := []struct {
		name string
		fast bool
		args []string
		want *ggrenderer.Renderer
	}{
		{"default", false, nil, standard},
		{"flag", false, []string{"--fast"}, ggrenderer.NewFast()},
		{"config", true, nil, ggrenderer.NewFast()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := config.Defaults().Sheet
			sc.Fast = tt.fast

			var got interface{}
			runWith(t, sheetCommand(), func(c *cli.Context) error {
				got = sheetRenderer(c, sc, standard)
				return nil
			}, append(tt.args, "clip.mp4")...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("unexpected renderer %#v", got)
			}
		})
	}
}
