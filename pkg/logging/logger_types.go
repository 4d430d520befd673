package logging

import "strings"

// Level orders log lines by severity.
type Level int

const (
	// DebugLevel adds one line per visited element.
	DebugLevel Level = iota
	// InfoLevel is one line per operation.
	InfoLevel
	// WarnLevel marks degraded outcomes such as skipped elements.
	WarnLevel
	// ErrorLevel marks aborted operations.
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configured name to a Level. Unknown names mean InfoLevel;
// the config layer rejects them before they get here.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is one key of a log line.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logger every component takes.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child whose lines all carry fields.
	With(fields ...Field) Logger
}

// NopLogger discards everything. Components default to it.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }

func NewNopLogger() Logger {
	return NopLogger{}
}
