package wal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
)

// ErrWALClosed is returned by Append after Close.
var ErrWALClosed = errors.New("wal is closed")

// WAL is an append-only journal of committed parameter writes.
type WAL struct {
	rotator    *FileRotator
	order      binary.ByteOrder
	encode     func([]byte) []byte
	decode     func([]byte) ([]byte, error)
	onAppend   func(raw, stored int)
	currentLSN uint64
	logger     logging.Logger
	mu         sync.Mutex
}

// NewWAL opens or creates wal.log in dataDir.
func NewWAL(dataDir string, opts ...Option) (*WAL, error) {
	return openWAL(filepath.Join(dataDir, "wal.log"), binary.LittleEndian, nil, nil, opts)
}

func openWAL(path string, order binary.ByteOrder, encode func([]byte) []byte, decode func([]byte) ([]byte, error), opts []Option) (*WAL, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create WAL directory: %w", err)
	}

	o := buildOptions(opts)
	w := &WAL{
		rotator: NewFileRotator(path),
		order:   order,
		encode:  encode,
		decode:  decode,
		logger:  o.Logger.With(logging.Component("wal")),
	}

	if err := w.rotator.Open(); err != nil {
		return nil, fmt.Errorf("failed to open WAL file: %w", err)
	}

	// Read existing entries to set currentLSN
	entries, err := w.readAll()
	if err != nil {
		w.rotator.Close()
		return nil, fmt.Errorf("failed to recover LSN: %w", err)
	}
	if len(entries) > 0 {
		w.currentLSN = entries[len(entries)-1].LSN
	}

	return w, nil
}

// Append appends a new entry and syncs it to disk.
func (w *WAL) Append(opType OpType, data []byte) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rotator.Writer() == nil {
		return 0, ErrWALClosed
	}
	if w.currentLSN == ^uint64(0) {
		return 0, fmt.Errorf("WAL LSN space exhausted - require WAL rotation")
	}

	stored := data
	if w.encode != nil {
		stored = w.encode(data)
	}

	lsn := w.currentLSN + 1
	entry := Entry{
		LSN:       lsn,
		OpType:    opType,
		Data:      stored,
		Checksum:  crc32.ChecksumIEEE(stored),
		Timestamp: time.Now().Unix(),
	}

	if err := writeEntry(w.rotator.Writer(), w.order, &entry); err != nil {
		return 0, fmt.Errorf("failed to write WAL entry: %w", err)
	}
	if err := w.rotator.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync WAL: %w", err)
	}

	w.currentLSN = lsn
	if w.onAppend != nil {
		w.onAppend(len(data), len(stored))
	}
	return lsn, nil
}

// ReadAll returns every valid entry written so far.
// Entries after the first corrupt one are dropped and the corruption is logged.
func (w *WAL) ReadAll() ([]*Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotator.Sync(); err != nil {
		return nil, err
	}
	return w.readAll()
}

func (w *WAL) readAll() ([]*Entry, error) {
	file, err := os.Open(w.rotator.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return readEntries(file, w.order, w.decode, w.logger), nil
}

// Replay calls handler for each valid entry in LSN order.
func (w *WAL) Replay(handler func(*Entry) error) error {
	entries, err := w.ReadAll()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := handler(entry); err != nil {
			return fmt.Errorf("failed to replay entry LSN=%d: %w", entry.LSN, err)
		}
	}

	return nil
}

// Truncate empties the WAL after a successful snapshot.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotator.Rotate(); err != nil {
		return fmt.Errorf("failed to truncate WAL: %w", err)
	}
	w.currentLSN = 0
	return nil
}

// GetCurrentLSN returns the current LSN
func (w *WAL) GetCurrentLSN() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentLSN
}

// Close closes the WAL
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rotator.Close()
}
