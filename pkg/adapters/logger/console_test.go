package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/user/framereader/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelWarn, &buf, false)

	log.Debug("debug line %d", 1)
	log.Info("info line %d", 2)
	log.Warn("warn line %d", 3)
	log.Error("error line %d", 4)

	got := buf.String()
	if strings.Contains(got, "debug line") || strings.Contains(got, "info line") {
		t.Errorf("expected debug and info to be filtered, got %q", got)
	}
	if !strings.Contains(got, "warn line 3\n") || !strings.Contains(got, "error line 4\n") {
		t.Errorf("expected warn and error lines, got %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelQuiet, &buf, false)
	log.Error("error line")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf, false).WithComponent("reader")

	log.Info("stream %d ready", 0)

	if got := buf.String(); got != "[reader] stream 0 ready\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Color(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf, true)

	log.Warn("careful")
	log.Info("plain")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != colorYellow+"careful"+colorReset {
		t.Errorf("expected yellow warning, got %q", lines[0])
	}
	if lines[1] != "plain" {
		t.Errorf("expected uncolored info, got %q", lines[1])
	}
}

func TestConsoleLogger_SharedWriterIsSerialized(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriter(ports.LevelInfo, &buf, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log := root.WithComponent("worker")
			for j := 0; j < 50; j++ {
				log.Info("line %d-%d", n, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[worker] line ") {
			t.Fatalf("interleaved output: %q", line)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	var log ports.Logger = NewNoop()
	log.Error("ignored %d", 1)
	if log.WithComponent("x") == nil {
		t.Error("expected a logger from WithComponent")
	}
}
