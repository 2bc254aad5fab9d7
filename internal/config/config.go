// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default index capacities, matching rtree.NewDefault.
const (
	DefaultMaxEntries = 8
	DefaultMinEntries = 3
)

var (
	// ErrNoLayerName is returned when a layer has an empty name.
	ErrNoLayerName = errors.New("layer name is empty")
	// ErrNoLayerSource is returned when a layer has no source.
	ErrNoLayerSource = errors.New("layer source is empty")
	// ErrDuplicateLayer is returned when two layers share a name.
	ErrDuplicateLayer = errors.New("duplicate layer name")
)

// Config represents the root configuration file structure.
type Config struct {
	Index  Index   `yaml:"index" json:"index"`
	Layers []Layer `yaml:"layers" json:"layers"`
}

// Index holds the R-tree node capacities.
type Index struct {
	MaxEntries int `yaml:"max_entries,omitempty" json:"max_entries"`
	MinEntries int `yaml:"min_entries,omitempty" json:"min_entries"`
}

// Layer represents a single GeoJSON feature source.
type Layer struct {
	Name string `yaml:"name" json:"name"`

	// local file path or http(s) URL
	Source string `yaml:"source" json:"-"`

	// numeric feature property used as index key, sequential keys when empty
	KeyProperty string `yaml:"key_property,omitempty" json:"key_property,omitempty"`
}

// IsRemote reports whether the layer source is fetched over HTTP.
func (l Layer) IsRemote() bool {
	return strings.HasPrefix(l.Source, "http://") || strings.HasPrefix(l.Source, "https://")
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates layers.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Index.MaxEntries <= 0 {
		c.Index.MaxEntries = DefaultMaxEntries
	}
	if c.Index.MinEntries <= 0 {
		c.Index.MinEntries = DefaultMinEntries
	}
}

// Validate checks that every layer is named uniquely and has a source.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		if l.Name == "" {
			return fmt.Errorf("layer #%d: %w", i, ErrNoLayerName)
		}
		if l.Source == "" {
			return fmt.Errorf("layer %q: %w", l.Name, ErrNoLayerSource)
		}
		if seen[l.Name] {
			return fmt.Errorf("layer %q: %w", l.Name, ErrDuplicateLayer)
		}
		seen[l.Name] = true
	}

	return nil
}
