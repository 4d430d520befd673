package wal

import (
	"bufio"
	"fmt"
	"os"
)

// FileRotator owns an append-only file and replaces it atomically on Rotate.
type FileRotator struct {
	path   string
	file   *os.File
	writer *bufio.Writer
}

// NewFileRotator creates a rotator for path. Open must be called before use.
func NewFileRotator(path string) *FileRotator {
	return &FileRotator{path: path}
}

// Open opens or creates the file for appending.
func (fr *FileRotator) Open() error {
	file, err := os.OpenFile(fr.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", fr.path, err)
	}
	fr.file = file
	fr.writer = bufio.NewWriter(file)
	return nil
}

// Path returns the file path.
func (fr *FileRotator) Path() string {
	return fr.path
}

// Writer returns the buffered writer.
func (fr *FileRotator) Writer() *bufio.Writer {
	return fr.writer
}

// Sync flushes the buffer and syncs the file to disk.
func (fr *FileRotator) Sync() error {
	if fr.writer != nil {
		if err := fr.writer.Flush(); err != nil {
			return err
		}
	}
	if fr.file == nil {
		return nil
	}
	return fr.file.Sync()
}

// Close flushes, syncs, and closes the file.
func (fr *FileRotator) Close() error {
	if err := fr.Sync(); err != nil {
		return err
	}
	if fr.file == nil {
		return nil
	}
	err := fr.file.Close()
	fr.file = nil
	fr.writer = nil
	return err
}

// Rotate replaces the current file with a new empty one.
// On failure the rotator reopens the original file.
func (fr *FileRotator) Rotate() error {
	if fr.file == nil {
		return fmt.Errorf("no file to rotate")
	}
	if err := fr.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush before rotate: %w", err)
	}

	newPath := fr.path + ".new"
	newFile, err := os.OpenFile(newPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create new file: %w", err)
	}

	closeErr := fr.file.Close()

	if err := os.Rename(newPath, fr.path); err != nil {
		newFile.Close()
		if oldFile, reopenErr := os.OpenFile(fr.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644); reopenErr == nil {
			fr.file = oldFile
			fr.writer = bufio.NewWriter(oldFile)
		}
		return fmt.Errorf("failed to rename file: %w (close error: %v)", err, closeErr)
	}

	fr.file = newFile
	fr.writer = bufio.NewWriter(newFile)
	return nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
