// Package ports defines the interfaces framereader's engine and stages
// depend on: media access, logging, rendering and file output.
package ports

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug covers per-frame engine detail: seeks, landings, stalls.
	LevelDebug LogLevel = iota
	// LevelInfo covers command progress such as files opened and written.
	LevelInfo
	// LevelWarn covers problems the engine recovered from.
	LevelWarn
	// LevelError covers failures that end a command.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages. msg is an English printf format that
// doubles as the translation key, so it must be a constant string.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with component
	// and shares the receiver's output.
	WithComponent(component string) Logger
}
