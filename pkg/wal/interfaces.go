package wal

// WriteAheadLog is the journal a persistent model appends committed parameter
// writes to. A transaction is its OpSetParameter entries followed by one
// OpCommit; Truncate runs only after a snapshot holds everything journaled.
type WriteAheadLog interface {
	Append(op OpType, data []byte) (lsn uint64, err error)
	// Replay calls fn for each intact entry in LSN order and stops at the
	// first torn or corrupt one.
	Replay(fn func(*Entry) error) error
	Truncate() error
	Close() error
}

var (
	_ WriteAheadLog = (*WAL)(nil)
	_ WriteAheadLog = (*CompressedWAL)(nil)
)
