// Package logging writes structured JSON log lines.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LevelEnvVar overrides the configured level when set.
const LevelEnvVar = "CONDUIT_LOG_LEVEL"

// EnvLevel returns the level named by LevelEnvVar, or configured when it is unset.
func EnvLevel(configured Level) Level {
	if v := os.Getenv(LevelEnvVar); v != "" {
		return ParseLevel(v)
	}
	return configured
}

// JSONLogger writes one JSON object per line: time, level and msg, followed by
// the fields at the top level. Children from With share the parent's lock.
type JSONLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	level  Level
	fields []Field
}

func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{mu: &sync.Mutex{}, w: w, level: level}
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.write(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.write(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.write(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.write(ErrorLevel, msg, fields) }

func (l *JSONLogger) With(fields ...Field) Logger {
	child := *l
	child.fields = append(append([]Field(nil), l.fields...), fields...)
	return &child
}

func (l *JSONLogger) write(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	line := make(map[string]any, 3+len(l.fields)+len(fields))
	for _, f := range l.fields {
		line[f.Key] = f.Value
	}
	for _, f := range fields {
		line[f.Key] = f.Value
	}
	line["time"] = time.Now().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["msg"] = msg

	data, err := json.Marshal(line)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":"ERROR","msg":"unencodable log line","error":%q}`, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(append(data, '\n'))
}

// Timer logs an operation once, with its latency, when it ends.
type Timer struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

func StartTimer(logger Logger, msg string, fields ...Field) *Timer {
	return &Timer{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

// End logs at Info.
func (t *Timer) End(fields ...Field) {
	t.logger.Info(t.msg, t.finish(fields)...)
}

// EndError logs at Error with err attached.
func (t *Timer) EndError(err error, fields ...Field) {
	t.logger.Error(t.msg, append(t.finish(fields), Error(err))...)
}

func (t *Timer) finish(extra []Field) []Field {
	out := append(append([]Field(nil), t.fields...), extra...)
	return append(out, Latency(time.Since(t.start)))
}
