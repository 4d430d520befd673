package wal

import (
	"fmt"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
)

// OpType represents the type of operation in the WAL
type OpType uint8

const (
	// OpSetParameter carries one buffered parameter write of a transaction.
	OpSetParameter OpType = iota + 1
	// OpCommit marks every preceding OpSetParameter of the same transaction as durable.
	OpCommit
)

func (o OpType) String() string {
	switch o {
	case OpSetParameter:
		return "set_parameter"
	case OpCommit:
		return "commit"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Entry represents a single WAL entry
type Entry struct {
	LSN       uint64 // Log Sequence Number
	OpType    OpType
	Data      []byte
	Checksum  uint32
	Timestamp int64
}

// Options configures a WAL.
type Options struct {
	Logger logging.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithLogger routes corruption warnings to logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
