package host

import (
	"github.com/reglet-dev/reglet-ffi/application/config"
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	parser    ports.ConfigParser
	overrides map[string]any
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser: parser.NewYamlConfigParser(),
	}
}

// Loader reads runtime configuration documents.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom config parser.
func WithParser(p ports.ConfigParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithOverrides applies key/value overrides on top of every parsed
// document. Keys are the YAML field names.
func WithOverrides(overrides map[string]any) LoaderOption {
	return func(c *loaderConfig) {
		c.overrides = overrides
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// Load parses and validates a runtime configuration document.
func (l *Loader) Load(raw []byte) (*entities.RuntimeConfig, error) {
	cfg, err := l.config.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	if len(l.config.overrides) > 0 {
		return config.FromMap(*cfg, l.config.overrides)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
