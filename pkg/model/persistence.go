package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/wal"
)

const (
	snapshotFile           = "snapshot.json"
	compressedSnapshotFile = "snapshot.json.sz"

	dirPermissions  = 0755
	filePermissions = 0644
)

// Config holds configuration for a persistent model.
type Config struct {
	DataDir string
	// Compress stores the snapshot and the journal snappy-compressed.
	Compress bool
}

// Open loads the model in cfg.DataDir: the latest snapshot, if any, followed by
// every committed transaction in the journal. Transactions without a commit
// marker are discarded.
func Open(cfg Config, opts ...Option) (*Model, error) {
	if cfg.DataDir == "" {
		return nil, ErrNotPersistent
	}
	if err := os.MkdirAll(cfg.DataDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	m := New(opts...)
	m.dataDir = cfg.DataDir
	m.compress = cfg.Compress

	doc, err := readSnapshot(m.snapshotPath(), cfg.Compress)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		if err := m.Import(doc); err != nil {
			return nil, fmt.Errorf("invalid snapshot: %w", err)
		}
	}

	walOpts := []wal.Option{wal.WithLogger(m.logger)}
	if cfg.Compress {
		m.journal, err = wal.NewCompressedWAL(cfg.DataDir, walOpts...)
	} else {
		m.journal, err = wal.NewWAL(cfg.DataDir, walOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := m.replay(); err != nil {
		m.journal.Close()
		return nil, err
	}

	m.logger.Info("model opened",
		logging.String("data_dir", cfg.DataDir),
		logging.Int("elements", len(m.elements)),
		logging.Uint64("replayed_writes", m.stats.ReplayedWrites))
	return m, nil
}

func (m *Model) snapshotPath() string {
	if m.compress {
		return filepath.Join(m.dataDir, compressedSnapshotFile)
	}
	return filepath.Join(m.dataDir, snapshotFile)
}

// replay applies committed journal transactions in LSN order.
func (m *Model) replay() error {
	pending := make(map[uint64][]ParameterWrite)

	err := m.journal.Replay(func(e *wal.Entry) error {
		switch e.OpType {
		case wal.OpSetParameter:
			var w ParameterWrite
			if err := json.Unmarshal(e.Data, &w); err != nil {
				return err
			}
			pending[w.TxID] = append(pending[w.TxID], w)
			// A later Begin must not reuse the id of an uncommitted tail.
			if w.TxID > m.nextTxID {
				m.nextTxID = w.TxID
			}
		case wal.OpCommit:
			var rec commitRecord
			if err := json.Unmarshal(e.Data, &rec); err != nil {
				return err
			}
			writes := pending[rec.TxID]
			delete(pending, rec.TxID)
			if len(writes) != rec.Writes {
				return fmt.Errorf("transaction %d journaled %d of %d writes", rec.TxID, len(writes), rec.Writes)
			}
			for _, w := range writes {
				el, ok := m.elements[w.Element]
				if !ok {
					return ElementNotFoundError("Replay", w.Element)
				}
				el.Parameters[w.Name] = w.Value
			}
			m.stats.ReplayedWrites += uint64(len(writes))
			if rec.TxID > m.nextTxID {
				m.nextTxID = rec.TxID
			}
		default:
			return fmt.Errorf("unknown journal op %s", e.OpType)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("journal replay failed: %w", err)
	}

	if len(pending) > 0 {
		m.logger.Warn("discarded uncommitted journal transactions", logging.Count(len(pending)))
	}
	return nil
}

// Checkpoint writes a snapshot and truncates the journal. Commits are blocked
// for the duration so no write falls between the two.
func (m *Model) Checkpoint() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrModelClosed
	}
	if m.dataDir == "" {
		return ErrNotPersistent
	}

	data, err := json.Marshal(m.documentLocked())
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if m.compress {
		data = snappy.Encode(nil, data)
	}

	snapshotPath := m.snapshotPath()
	tmpPath := snapshotPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, snapshotPath); err != nil {
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	if err := m.journal.Truncate(); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}

	m.markCheckpoint()
	m.logger.Info("checkpoint written",
		logging.String("path", snapshotPath),
		logging.Int("bytes", len(data)))
	return nil
}

// readSnapshot returns nil when no snapshot exists yet.
func readSnapshot(path string, compressed bool) (*Document, error) {
	r, err := mmap.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if compressed {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
	}
	return DecodeDocument(bytes.NewReader(data))
}
