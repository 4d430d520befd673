package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// FileLoader reads a JSON document from disk. A .sz suffix means snappy-compressed.
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

func (f *FileLoader) Load(ctx context.Context) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return decode(f.Path, data)
}

// Save writes doc atomically: to a temporary file first, then renamed over Path.
func (f *FileLoader) Save(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(f.Path, doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}
