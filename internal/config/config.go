// Package config loads the runtime configuration and dialect descriptor
// overlays.
//
// The runtime configuration is a small YAML file:
//
//	dialect: nebula
//	version: "3"
//	descriptors: ./dialects
//	journal: ./graphq.db
//
// GRAPHQ_DIALECT and GRAPHQ_VERSION override the file. Descriptor overlays
// are CUE files in the descriptors directory; see LoadDescriptors.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDialect is used when neither the file nor the environment names one.
const DefaultDialect = "cypher"

// Environment variables that override the file.
const (
	EnvDialect = "GRAPHQ_DIALECT"
	EnvVersion = "GRAPHQ_VERSION"
)

// Config is the runtime configuration.
type Config struct {
	// Dialect is the registry name statements are rendered for.
	Dialect string `yaml:"dialect"`

	// Version selects a dialect version; empty means the highest registered.
	Version string `yaml:"version,omitempty"`

	// Descriptors is a directory of CUE descriptor overlays.
	Descriptors string `yaml:"descriptors,omitempty"`

	// Journal is the SQLite statement journal path. Empty disables it.
	Journal string `yaml:"journal,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Dialect: DefaultDialect}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path yields the defaults with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	cfg = cfg.withEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults. Unknown fields are
// rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

func (c Config) withEnv(lookup func(string) (string, bool)) Config {
	if v, ok := lookup(EnvDialect); ok && v != "" {
		c.Dialect = v
	}
	if v, ok := lookup(EnvVersion); ok {
		c.Version = v
	}
	return c
}

// Validate checks required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dialect) == "" {
		return fmt.Errorf("dialect is required")
	}
	return nil
}
