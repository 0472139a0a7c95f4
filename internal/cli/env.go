package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/roach88/graphq/internal/config"
	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/dialect/cypher"
	"github.com/roach88/graphq/internal/dialect/nebula"
)

// overrides are command flags that take precedence over the config file.
type overrides struct {
	Dialect     string
	Version     string
	Descriptors string
	Journal     string
}

// environment is the configuration and dialect registry of one invocation.
type environment struct {
	cfg      config.Config
	registry *dialect.Registry
}

// loadEnvironment loads the config file named by opts, applies flag
// overrides and builds a registry holding the built-in dialects plus every
// descriptor overlay. Relative paths in the config file are resolved against
// its directory.
func loadEnvironment(opts *RootOptions, o overrides) (*environment, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, &configError{err: err}
	}
	if opts.Config != "" {
		base := filepath.Dir(opts.Config)
		cfg.Descriptors = resolve(base, cfg.Descriptors)
		cfg.Journal = resolve(base, cfg.Journal)
	}
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
		cfg.Version = o.Version
	} else if o.Version != "" {
		cfg.Version = o.Version
	}
	if o.Descriptors != "" {
		cfg.Descriptors = o.Descriptors
	}
	if o.Journal != "" {
		cfg.Journal = o.Journal
	}

	reg, err := newRegistry(cfg.Descriptors)
	if err != nil {
		return nil, err
	}
	slog.Debug("environment loaded", "dialect", cfg.Dialect, "version", cfg.Version, "descriptors", cfg.Descriptors)
	return &environment{cfg: cfg, registry: reg}, nil
}

// newRegistry returns a fresh registry so overlays never leak into
// dialect.Default.
func newRegistry(descriptors string) (*dialect.Registry, error) {
	reg := dialect.NewRegistry()
	for _, d := range []dialect.Descriptor{cypher.Descriptor(), nebula.Descriptor()} {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	if descriptors == "" {
		return reg, nil
	}
	specs, err := config.LoadDescriptors(descriptors)
	if err != nil {
		return nil, err
	}
	if err := config.Apply(reg, specs); err != nil {
		return nil, err
	}
	return reg, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
