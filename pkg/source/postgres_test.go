package source

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set CONDUIT_TEST_POSTGRES_DSN to a scratch database to run these tests.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("CONDUIT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CONDUIT_TEST_POSTGRES_DSN not set")
	}
	return dsn
}

func resetTables(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS connections, element_parameters, elements`)
	require.NoError(t, err)
}

func TestPostgresLoader_SeedLoadSave(t *testing.T) {
	dsn := testDSN(t)
	resetTables(t, dsn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	l := NewPostgresLoader(dsn)
	require.NoError(t, l.Seed(ctx, sampleDocument()))

	doc, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), doc)

	doc.Elements[1].Parameters["From"] = "PNL-A"
	require.NoError(t, l.Save(ctx, doc))

	reloaded, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PNL-A", reloaded.Elements[1].Parameters["From"])
}

func TestPostgresLoader_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPostgresLoader("postgres://conduit@127.0.0.1:1/none?connect_timeout=1").Load(ctx)
	assert.Error(t, err)

	_, err = NewPostgresLoader("::not a dsn::").Load(ctx)
	assert.Error(t, err)
}
