// Package source loads and saves model documents from files, S3-compatible
// object stores and PostgreSQL.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Loader reads a model document.
type Loader interface {
	Load(ctx context.Context) (*model.Document, error)
}

// Saver writes a model document back where it came from.
type Saver interface {
	Save(ctx context.Context, doc *model.Document) error
}

// Source can both load and save.
type Source interface {
	Loader
	Saver
}

// FromConfig returns the source cfg describes.
func FromConfig(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case config.SourceFile, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source: no path configured")
		}
		return NewFileLoader(cfg.Path), nil
	case config.SourceS3:
		return NewS3Loader(ctx, S3Options{
			Bucket:          cfg.Bucket,
			Key:             cfg.Key,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	case config.SourcePostgres:
		return NewPostgresLoader(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Compressed reports whether name uses the snappy suffix.
func Compressed(name string) bool {
	return strings.HasSuffix(name, ".sz")
}

// decode parses data, decompressing it first when name ends in .sz.
func decode(name string, data []byte) (*model.Document, error) {
	if Compressed(name) {
		var err error
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to decompress: %w", name, err)
		}
	}
	doc, err := model.DecodeDocument(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// encode is the inverse of decode.
func encode(name string, doc *model.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model document: %w", err)
	}
	if Compressed(name) {
		data = snappy.Encode(nil, data)
	}
	return data, nil
}
