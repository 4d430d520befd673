// Package config loads the YAML configuration shared by the conduit commands.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// Source kinds
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Config is the root of the configuration file.
type Config struct {
	Log            LogConfig           `yaml:"log"`
	Source         SourceConfig        `yaml:"source"`
	Model          ModelConfig         `yaml:"model"`
	Classification map[string][]string `yaml:"classification" validate:"omitempty,dive,keys,oneof=run_segment fitting junction_box,endkeys,min=1"`
	Traversal      TraversalConfig     `yaml:"traversal"`
	Parameters     ParametersConfig    `yaml:"parameters"`
	Server         ServerConfig        `yaml:"server"`
	Audit          AuditConfig         `yaml:"audit"`
}

// LogConfig configures the JSON logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// SourceConfig selects where the model document comes from.
type SourceConfig struct {
	Kind string `yaml:"kind" validate:"oneof=file s3 postgres"`

	// file; the commands may set Path from a flag
	Path string `yaml:"path"`

	// s3
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// postgres
	DSN string `yaml:"dsn"`

	Timeout time.Duration `yaml:"timeout"`
}

// WithTimeout bounds ctx by Timeout. Zero means no bound.
func (s SourceConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// ModelConfig configures persistence. An empty DataDir keeps the model in memory.
type ModelConfig struct {
	DataDir  string `yaml:"data_dir"`
	Compress bool   `yaml:"compress"`
}

// TraversalConfig configures the run network traversal.
type TraversalConfig struct {
	Strategy   string `yaml:"strategy" validate:"oneof=breadth_first bfs depth_first dfs"`
	MaxVisited int    `yaml:"max_visited" validate:"min=0"`
}

// ParametersConfig names the text parameters copied across a run.
type ParametersConfig struct {
	Run     []string `yaml:"run" validate:"required,min=1,unique,dive,required"`
	Fixture []string `yaml:"fixture" validate:"required,min=1,unique,dive,required"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuditConfig sizes the in-memory audit trail.
type AuditConfig struct {
	BufferSize int `yaml:"buffer_size" validate:"min=1"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Source: SourceConfig{Kind: SourceFile, Region: "us-east-1", Timeout: 30 * time.Second},
		Classification: map[string][]string{
			connectivity.RunSegment.String():  {connectivity.CategoryConduits},
			connectivity.Fitting.String():     {connectivity.CategoryConduitFittings},
			connectivity.JunctionBox.String(): {connectivity.CategoryElectricalFixtures, connectivity.CategoryJunctionBoxes},
		},
		Traversal: TraversalConfig{Strategy: "breadth_first"},
		Parameters: ParametersConfig{
			Run:     append([]string(nil), propagation.DefaultRunParameters...),
			Fixture: append([]string(nil), propagation.DefaultFixtureParameters...),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{BufferSize: 1000},
	}
}

// Load reads and validates the file at path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// A classification section replaces the defaults instead of merging into them.
	defaults := cfg.Classification
	cfg.Classification = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Classification) == 0 {
		cfg.Classification = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	cv := NewConfigValidator("Config")

	cv.When(c.Source.Kind == SourceS3, func(cv *ConfigValidator) {
		cv.Required("Source.Bucket", c.Source.Bucket).
			Required("Source.Key", c.Source.Key).
			Required("Source.Region", c.Source.Region)
		cv.Custom("Source.SecretAccessKey", func() error {
			if (c.Source.AccessKeyID == "") != (c.Source.SecretAccessKey == "") {
				return errors.New("access_key_id and secret_access_key must be set together")
			}
			return nil
		})
	})
	cv.When(c.Source.Kind == SourcePostgres, func(cv *ConfigValidator) {
		cv.Required("Source.DSN", c.Source.DSN)
	})

	cv.NonNegativeDuration("Source.Timeout", c.Source.Timeout).
		NonNegativeDuration("Server.ReadTimeout", c.Server.ReadTimeout).
		NonNegativeDuration("Server.WriteTimeout", c.Server.WriteTimeout).
		NonNegativeDuration("Server.ShutdownTimeout", c.Server.ShutdownTimeout)

	cv.Custom("Classification", func() error {
		_, err := c.Classifier()
		return err
	})
	cv.Custom("Parameters.Fixture", func() error {
		run := make(map[string]bool, len(c.Parameters.Run))
		for _, name := range c.Parameters.Run {
			run[name] = true
		}
		for _, name := range c.Parameters.Fixture {
			if !run[name] {
				return fmt.Errorf("fixture parameter %q is not a run parameter", name)
			}
		}
		return nil
	})

	return cv.Validate()
}

// Classifier builds the category classifier. A category listed under two
// classifications is an error. An empty section yields the default classifier.
func (c *Config) Classifier() (*connectivity.Classifier, error) {
	if len(c.Classification) == 0 {
		return connectivity.DefaultClassifier(), nil
	}
	mapping := make(map[string]connectivity.Classification)
	for name, categories := range c.Classification {
		class, err := connectivity.ParseClassification(name)
		if err != nil {
			return nil, err
		}
		for _, cat := range categories {
			if cat == "" {
				return nil, fmt.Errorf("empty category under %s", class)
			}
			if prev, ok := mapping[cat]; ok && prev != class {
				return nil, fmt.Errorf("category %q maps to both %s and %s", cat, prev, class)
			}
			mapping[cat] = class
		}
	}
	return connectivity.NewClassifier(mapping), nil
}

// LogLevel returns the configured level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// TraversalOptions returns the traversal options the configuration asks for.
func (c *Config) TraversalOptions() ([]traversal.Option, error) {
	strategy, err := traversal.ParseStrategy(c.Traversal.Strategy)
	if err != nil {
		return nil, err
	}
	return []traversal.Option{
		traversal.WithStrategy(strategy),
		traversal.WithMaxVisited(c.Traversal.MaxVisited),
	}, nil
}

// PropagationOptions returns the classifier, parameter and traversal options
// the configuration asks for.
func (c *Config) PropagationOptions() ([]propagation.Option, error) {
	classifier, err := c.Classifier()
	if err != nil {
		return nil, err
	}
	traversalOpts, err := c.TraversalOptions()
	if err != nil {
		return nil, err
	}
	return []propagation.Option{
		propagation.WithClassifier(classifier),
		propagation.WithParameters(c.Parameters.Run, c.Parameters.Fixture),
		propagation.WithTraversalOptions(traversalOpts...),
	}, nil
}
