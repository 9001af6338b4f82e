// Package main provides the CLI entry point for framereader.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framereader/pkg/adapters/ffmpegcodec"
	"github.com/user/framereader/pkg/adapters/ggrenderer"
	"github.com/user/framereader/pkg/adapters/imagecodec"
	"github.com/user/framereader/pkg/adapters/logger"
	"github.com/user/framereader/pkg/adapters/mp4demux"
	"github.com/user/framereader/pkg/adapters/osfilesystem"
	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/ports"
	"github.com/user/framereader/pkg/reader"
	"github.com/user/framereader/pkg/registry"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "framereader",
		Usage:   l10n.T("Frame-accurate video frame reader"),
		Version: version,
		Description: l10n.T("framereader decodes exact frames from video files, " +
			"writes them as images and renders contact sheets."),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    l10n.T("Path to a YAML configuration file"),
				Category: l10n.T("Configuration"),
			},
			&cli.StringFlag{
				Name:     "log-level",
				Aliases:  []string{"l"},
				Usage:    l10n.T("Log level (debug, info, warn, error)"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"Q"},
				Usage:    l10n.T("Suppress all log output"),
				Category: l10n.T("Logging"),
			},
		},
		Commands: []*cli.Command{
			infoCommand(),
			extractCommand(),
			sheetCommand(),
		},
	}
}

// env holds what every command needs: configuration, logging, the file
// registry and the output adapters.
type env struct {
	cfg      config.Config
	caps     config.Capabilities
	log      ports.Logger
	quiet    bool
	registry *registry.Registry
	fs       ports.FileSystem
	renderer ports.Renderer
}

// newEnv loads configuration and wires the adapters.
func newEnv(c *cli.Context) (*env, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	e := &env{
		cfg:      cfg,
		caps:     cfg.Capabilities(),
		quiet:    c.Bool("quiet"),
		fs:       osfilesystem.New(),
		renderer: ggrenderer.New(),
	}
	if e.quiet {
		e.log = logger.NewNoop()
	} else {
		e.log = logger.NewConsole(cfg.Level())
	}

	codecs := ffmpegcodec.Chain{imagecodec.NewRegistry()}
	if ff, err := ffmpegcodec.NewRegistry(cfg.FFmpegPath); err == nil {
		codecs = append(codecs, ff)
	} else {
		e.log.Debug("ffmpeg unavailable, H.264 and HEVC streams will be skipped: %s", err)
	}

	deps := reader.Deps{
		Demuxer: mp4demux.New(),
		Codecs:  codecs,
		Logger:  e.log,
	}
	caps := e.caps
	e.registry = registry.New(func(filename string) *reader.File {
		return reader.Open(filename, deps, caps)
	})
	return e, nil
}

// decodeOptions applies per-command overrides to the configured defaults.
func (e *env) decodeOptions(c *cli.Context) reader.DecodeOptions {
	opts := reader.DecodeOptions{
		LoadNearest: e.caps.LoadNearest,
		MaxRetries:  e.caps.MaxRetries,
	}
	if c.IsSet("nearest") {
		opts.LoadNearest = c.Bool("nearest")
	}
	if c.IsSet("retries") {
		opts.MaxRetries = max(c.Int("retries"), 0)
	}
	return opts
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (e *env) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			e.log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// close releases every open file.
func (e *env) close() {
	e.registry.Close()
}

// decodeFlags are shared by the commands that decode frames.
func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     "from",
			Value:    1,
			Usage:    l10n.T("First frame to read (1-based)"),
			Category: l10n.T("Frames"),
		},
		&cli.IntFlag{
			Name:     "to",
			Usage:    l10n.T("Last frame to read (default: last frame)"),
			Category: l10n.T("Frames"),
		},
		&cli.IntFlag{
			Name:     "every",
			Value:    1,
			Usage:    l10n.T("Read every Nth frame"),
			Category: l10n.T("Frames"),
		},
		&cli.BoolFlag{
			Name:     "nearest",
			Usage:    l10n.T("Clamp out-of-range frames to the nearest frame"),
			Category: l10n.T("Decoding"),
		},
		&cli.IntFlag{
			Name:     "retries",
			Usage:    l10n.T("Times a stalled decode is retried"),
			Category: l10n.T("Decoding"),
		},
	}
}
