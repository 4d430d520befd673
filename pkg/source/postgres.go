package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// PostgresLoader reads a model from the elements, element_parameters and
// connections tables.
type PostgresLoader struct {
	dsn string
}

// NewPostgresLoader returns a loader for the database at dsn.
func NewPostgresLoader(dsn string) *PostgresLoader {
	return &PostgresLoader{dsn: dsn}
}

func (l *PostgresLoader) connect(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(l.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return pool, nil
}

func (l *PostgresLoader) Load(ctx context.Context) (*model.Document, error) {
	pool, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	// One snapshot across the three reads.
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback(ctx)

	doc := &model.Document{}
	index := make(map[model.ElementID]int)

	rows, err := tx.Query(ctx, `SELECT id, category, name, connectors FROM elements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	for rows.Next() {
		var el model.Element
		if err := rows.Scan(&el.ID, &el.Category, &el.Name, &el.Connectors); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		el.Parameters = make(map[string]string)
		index[el.ID] = len(doc.Elements)
		doc.Elements = append(doc.Elements, el)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read elements: %w", err)
	}

	rows, err = tx.Query(ctx, `SELECT element_id, name, value FROM element_parameters`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	for rows.Next() {
		var (
			id          model.ElementID
			name, value string
		)
		if err := rows.Scan(&id, &name, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		if i, ok := index[id]; ok {
			doc.Elements[i].Parameters[name] = value
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	rows, err = tx.Query(ctx, `SELECT id, a_element, a_connector, b_element, b_connector FROM connections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.ID, &c.A.Element, &c.A.Connector, &c.B.Element, &c.B.Connector); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		doc.Connections = append(doc.Connections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read connections: %w", err)
	}

	return doc, nil
}

// Save upserts every parameter value of doc. Elements and connections are not
// modified: topology is read-only here.
func (l *PostgresLoader) Save(ctx context.Context, doc *model.Document) error {
	pool, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	batch := &pgx.Batch{}
	for _, el := range doc.Elements {
		for name, value := range el.Parameters {
			batch.Queue(`
				INSERT INTO element_parameters (element_id, name, value)
				VALUES ($1, $2, $3)
				ON CONFLICT (element_id, name) DO UPDATE SET value = EXCLUDED.value
			`, el.ID, name, value)
		}
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to save parameters: %w", err)
			}
		}
		return results.Close()
	})
}

// Seed inserts doc's elements, parameters and connections into empty tables.
// Loaders never call it; it exists for importing a model into a new database.
func (l *PostgresLoader) Seed(ctx context.Context, doc *model.Document) error {
	pool, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		elements := make([][]any, len(doc.Elements))
		var params [][]any
		for i, el := range doc.Elements {
			elements[i] = []any{int64(el.ID), el.Category, el.Name, int32(el.Connectors)}
			for name, value := range el.Parameters {
				params = append(params, []any{int64(el.ID), name, value})
			}
		}
		connections := make([][]any, len(doc.Connections))
		for i, c := range doc.Connections {
			id := c.ID
			if id == 0 {
				id = uint64(i + 1)
			}
			connections[i] = []any{int64(id), int64(c.A.Element), int32(c.A.Connector), int64(c.B.Element), int32(c.B.Connector)}
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"elements"},
			[]string{"id", "category", "name", "connectors"}, pgx.CopyFromRows(elements)); err != nil {
			return fmt.Errorf("failed to copy elements: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"element_parameters"},
			[]string{"element_id", "name", "value"}, pgx.CopyFromRows(params)); err != nil {
			return fmt.Errorf("failed to copy parameters: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"connections"},
			[]string{"id", "a_element", "a_connector", "b_element", "b_connector"}, pgx.CopyFromRows(connections)); err != nil {
			return fmt.Errorf("failed to copy connections: %w", err)
		}
		return nil
	})
}
