package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

type failingLoader struct{}

func (failingLoader) Load(context.Context) (*model.Document, error) {
	return nil, errors.New("unreachable")
}

func seededFile(t *testing.T) *FileLoader {
	t.Helper()
	f := NewFileLoader(filepath.Join(t.TempDir(), "model.json"))
	require.NoError(t, f.Save(context.Background(), sampleDocument()))
	return f
}

func setFrom(t *testing.T, m *model.Model, value string) {
	t.Helper()
	require.NoError(t, m.Update(func(tx *model.Transaction) error {
		return tx.SetParameter(2, "From", value)
	}))
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()
	f := seededFile(t)

	m, err := Open(ctx, f, config.ModelConfig{})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Statistics().Elements)

	setFrom(t, m, "PNL-A")
	require.NoError(t, Persist(ctx, m, f))

	doc, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PNL-A", doc.Elements[1].Parameters["From"], "in-memory models are written back to the source")
}

func TestOpen_Persistent(t *testing.T) {
	ctx := context.Background()
	f := seededFile(t)
	cfg := config.ModelConfig{DataDir: t.TempDir(), Compress: true}

	m, err := Open(ctx, f, cfg)
	require.NoError(t, err)
	setFrom(t, m, "PNL-B")
	require.NoError(t, m.Close())

	// The second open uses the journal; the source is never read.
	m, err = Open(ctx, failingLoader{}, cfg)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Parameter(2, "From")
	require.NoError(t, err)
	assert.Equal(t, "PNL-B", v)

	require.NoError(t, Persist(ctx, m, nil))

	doc, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Elements[1].Parameters["From"], "persistent models checkpoint instead of writing back")
}

func TestOpen_LoadError(t *testing.T) {
	_, err := Open(context.Background(), failingLoader{}, config.ModelConfig{})
	assert.ErrorContains(t, err, "unreachable")

	_, err = Open(context.Background(), failingLoader{}, config.ModelConfig{DataDir: t.TempDir()})
	assert.ErrorContains(t, err, "seed model")
}
