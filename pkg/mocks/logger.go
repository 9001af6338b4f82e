package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/framereader/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Msg       string
	Args      []interface{}
}

// Text returns the formatted message.
func (e LogEntry) Text() string {
	return fmt.Sprintf(e.Msg, e.Args...)
}

// Logger is a mock implementation of ports.Logger that records every call.
type Logger struct {
	component string
	sink      *logSink
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{sink: &logSink{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record(ports.LevelError, msg, args) }

// WithComponent returns a logger sharing this logger's records.
func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, sink: m.sink}
}

func (m *Logger) record(level ports.LogLevel, msg string, args []interface{}) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Msg:       msg,
		Args:      args,
	})
}

// Entries returns all recorded entries (for test verification).
func (m *Logger) Entries() []LogEntry {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	return append([]LogEntry(nil), m.sink.entries...)
}

// Count returns how many entries have a message starting with prefix.
func (m *Logger) Count(prefix string) int {
	n := 0
	for _, e := range m.Entries() {
		if strings.HasPrefix(e.Msg, prefix) {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
