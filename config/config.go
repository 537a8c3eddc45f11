package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/viant/embedstore/query"
	"github.com/viant/embedstore/store"
)

// Config assembles a store and searcher from declarative settings.
type Config struct {
	// Dimension is the fixed embedding dimension; required.
	Dimension int `yaml:"dimension"`

	// Normalized declares that submitted embeddings are unit vectors.
	Normalized bool `yaml:"normalized,omitempty"`

	// Metric is "dot" (default) or "cosine".
	Metric string `yaml:"metric,omitempty"`

	// Index is "flat" (default) or "vptree".
	Index string `yaml:"index,omitempty"`

	// Database is an optional SQLite path (or ":memory:") for persistence.
	Database string `yaml:"database,omitempty"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings without building anything.
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("config: dimension must be positive, got %d", c.Dimension)
	}
	if _, err := query.ParseMetric(c.Metric); err != nil {
		return err
	}
	if _, err := query.ParseKind(c.Index); err != nil {
		return err
	}
	return nil
}

// NewStore builds a store matching the declaration.
func (c *Config) NewStore() (*store.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var opts []store.Option
	if c.Normalized {
		opts = append(opts, store.WithNormalized())
	}
	return store.New(c.Dimension, opts...)
}

// NewSearcher binds a searcher to the store using the configured metric and
// index kind. Additional options (an embedder, typically) append after the
// configured ones.
func (c *Config) NewSearcher(st *store.Store, opts ...query.Option) (*query.Searcher, error) {
	metric, err := query.ParseMetric(c.Metric)
	if err != nil {
		return nil, err
	}
	kind, err := query.ParseKind(c.Index)
	if err != nil {
		return nil, err
	}
	all := append([]query.Option{query.WithMetric(metric), query.WithIndexKind(kind)}, opts...)
	return query.New(st, all...)
}
