package logging

import "time"

func String(key, value string) Field        { return Field{key, value} }
func Int(key string, value int) Field       { return Field{key, value} }
func Uint64(key string, value uint64) Field { return Field{key, value} }
func Bool(key string, value bool) Field     { return Field{key, value} }
func Any(key string, value any) Field       { return Field{key, value} }

// Error is the "error" field; nil logs as null.
func Error(err error) Field {
	if err == nil {
		return Field{"error", nil}
	}
	return Field{"error", err.Error()}
}

func Component(name string) Field { return String("component", name) }
func Operation(op string) Field   { return String("operation", op) }
func Count(n int) Field           { return Int("count", n) }

// Latency is rendered as a Go duration string, e.g. "1.5ms".
func Latency(d time.Duration) Field { return String("latency", d.String()) }

// ElementID tags a line with a model element.
func ElementID(id uint64) Field { return Uint64("element_id", id) }

// Classification is the run segment / fitting / junction box role of an element.
func Classification(class string) Field { return String("classification", class) }

// OperationID correlates every line of one propagation.
func OperationID(id string) Field { return String("operation_id", id) }
