package wal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileRotator_WriteAndSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	fr := NewFileRotator(path)
	if err := fr.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer fr.Close()

	if _, err := fr.Writer().Write([]byte("test data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := fr.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "test data" {
		t.Errorf("Content = %q, want %q", string(content), "test data")
	}
}

func TestFileRotator_Rotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	fr := NewFileRotator(path)
	if err := fr.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer fr.Close()

	fr.Writer().Write([]byte("before rotation"))
	fr.Sync()

	if err := fr.Rotate(); err != nil {
		t.Fatalf("Rotate() failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected empty file after rotation, got %d bytes", info.Size())
	}
	if FileExists(path + ".new") {
		t.Error("Temporary rotation file left behind")
	}

	fr.Writer().Write([]byte("after"))
	fr.Sync()
	content, _ := os.ReadFile(path)
	if string(content) != "after" {
		t.Errorf("Content = %q, want %q", content, "after")
	}
}

func TestFileRotator_RotateUnopened(t *testing.T) {
	fr := NewFileRotator(filepath.Join(t.TempDir(), "x.log"))
	if err := fr.Rotate(); err == nil {
		t.Error("Expected error rotating an unopened file")
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !FileExists(dir) {
		t.Error("Expected directory to exist")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("Expected missing file to be reported absent")
	}
}
