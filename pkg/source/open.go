package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Open builds the working model. With a data directory the persisted model is
// used and src only seeds it while it is empty; without one, src is loaded
// into memory.
func Open(ctx context.Context, src Loader, cfg config.ModelConfig, opts ...model.Option) (*model.Model, error) {
	if cfg.DataDir == "" {
		doc, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return model.FromDocument(doc, opts...)
	}

	m, err := model.Open(model.Config{DataDir: cfg.DataDir, Compress: cfg.Compress}, opts...)
	if err != nil {
		return nil, err
	}
	if m.Statistics().Elements > 0 {
		return m, nil
	}

	doc, err := src.Load(ctx)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("seed model: %w", err)
	}
	if err := m.Import(doc); err != nil {
		m.Close()
		return nil, fmt.Errorf("seed model: %w", err)
	}
	if err := m.Checkpoint(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Persist makes m's parameter writes durable: a checkpoint for a persistent
// model, otherwise the whole document is written back to dst.
func Persist(ctx context.Context, m *model.Model, dst Saver) error {
	err := m.Checkpoint()
	if err == nil || !errors.Is(err, model.ErrNotPersistent) {
		return err
	}
	if err := dst.Save(ctx, m.Document()); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}
