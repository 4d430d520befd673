package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-conduit/pkg/wal"
)

func openSeeded(t *testing.T, cfg Config) *Model {
	t.Helper()
	m, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if m.Statistics().Elements == 0 {
		if err := m.Import(linearDocument()); err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if err := m.Checkpoint(); err != nil {
			t.Fatalf("Checkpoint failed: %v", err)
		}
	}
	return m
}

func TestOpen_RequiresDataDir(t *testing.T) {
	if _, err := Open(Config{}); !errors.Is(err, ErrNotPersistent) {
		t.Errorf("Expected ErrNotPersistent, got %v", err)
	}
	if err := New().Checkpoint(); !errors.Is(err, ErrNotPersistent) {
		t.Errorf("Checkpoint on in-memory model = %v", err)
	}
}

func TestOpen_ReplaysCommittedWrites(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "compressed"
		}
		t.Run(name, func(t *testing.T) {
			cfg := Config{DataDir: t.TempDir(), Compress: compress}

			m := openSeeded(t, cfg)
			err := m.Update(func(tx *Transaction) error {
				if err := tx.SetParameter(3, "From", "PNL-A"); err != nil {
					return err
				}
				return tx.SetParameter(4, "Wire Size", "#12")
			})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			m.Close()

			m2, err := Open(cfg)
			if err != nil {
				t.Fatalf("Reopen failed: %v", err)
			}
			defer m2.Close()

			if v, _ := m2.Parameter(3, "From"); v != "PNL-A" {
				t.Errorf("From = %q after reopen", v)
			}
			if v, _ := m2.Parameter(4, "Wire Size"); v != "#12" {
				t.Errorf("Wire Size = %q after reopen", v)
			}
			if m2.Statistics().ReplayedWrites != 2 {
				t.Errorf("ReplayedWrites = %d", m2.Statistics().ReplayedWrites)
			}
		})
	}
}

func TestOpen_DiscardsUncommittedTail(t *testing.T) {
	cfg := Config{DataDir: t.TempDir()}
	m := openSeeded(t, cfg)
	m.Close()

	// A crash between the writes and the commit marker.
	j, err := wal.NewWAL(cfg.DataDir)
	if err != nil {
		t.Fatalf("NewWAL failed: %v", err)
	}
	j.Append(wal.OpSetParameter, []byte(`{"tx":1,"element":3,"name":"From","value":"lost"}`))
	j.Close()

	m2, err := Open(cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	if v, _ := m2.Parameter(3, "From"); v != "" {
		t.Errorf("Uncommitted write replayed: %q", v)
	}

	// The next transaction must not reuse the discarded id.
	if err := m2.Update(func(tx *Transaction) error {
		return tx.SetParameter(1, "From", "kept")
	}); err != nil {
		t.Fatalf("Update after reopen failed: %v", err)
	}
	m2.Close()

	m3, err := Open(cfg)
	if err != nil {
		t.Fatalf("Second reopen failed: %v", err)
	}
	defer m3.Close()

	if v, _ := m3.Parameter(1, "From"); v != "kept" {
		t.Errorf("Committed write after discarded tail = %q, want kept", v)
	}
	if v, _ := m3.Parameter(3, "From"); v != "" {
		t.Errorf("Uncommitted write replayed on second reopen: %q", v)
	}
}

func TestCheckpoint_TruncatesJournal(t *testing.T) {
	cfg := Config{DataDir: t.TempDir()}
	m := openSeeded(t, cfg)

	m.Update(func(tx *Transaction) error { return tx.SetParameter(1, "Comments", "checked") })
	if err := m.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if m.Statistics().LastCheckpoint.IsZero() {
		t.Error("LastCheckpoint not recorded")
	}
	m.Close()

	info, err := os.Stat(filepath.Join(cfg.DataDir, "wal.log"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Journal not truncated, %d bytes", info.Size())
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, snapshotFile+".tmp")); !os.IsNotExist(err) {
		t.Error("Temporary snapshot left behind")
	}

	m2, err := Open(cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer m2.Close()
	if v, _ := m2.Parameter(1, "Comments"); v != "checked" {
		t.Errorf("Comments = %q after checkpoint reopen", v)
	}
	if m2.Statistics().ReplayedWrites != 0 {
		t.Error("Nothing should be replayed after a checkpoint")
	}
}

func TestCheckpoint_CompressedSnapshotFile(t *testing.T) {
	cfg := Config{DataDir: t.TempDir(), Compress: true}
	m := openSeeded(t, cfg)
	defer m.Close()

	if !wal.FileExists(filepath.Join(cfg.DataDir, compressedSnapshotFile)) {
		t.Error("Expected compressed snapshot file")
	}
	if wal.FileExists(filepath.Join(cfg.DataDir, snapshotFile)) {
		t.Error("Plain snapshot should not be written in compressed mode")
	}
}

func TestCommit_AfterCloseFails(t *testing.T) {
	cfg := Config{DataDir: t.TempDir()}
	m := openSeeded(t, cfg)

	tx, _ := m.Begin()
	tx.SetParameter(1, "Comments", "late")
	m.Close()

	if err := tx.Commit(); !errors.Is(err, ErrModelClosed) {
		t.Errorf("Commit after close = %v", err)
	}
}
