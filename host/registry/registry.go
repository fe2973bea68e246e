// Package registry stores the extension value types installed by native
// packages, together with a JSON schema of each type's native model.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reglet-dev/reglet-ffi/application/schema"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures an ExtensionRegistry.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables failing on duplicate type names.
// Default is true. Disable only for tests that reload a package.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// ExtensionRegistry implements ports.ExtensionRegistry.
type ExtensionRegistry struct {
	config  registryConfig
	types   sync.Map // map[string]ports.ExtensionType
	schemas sync.Map // map[string]string (json schema)
}

// NewExtensionRegistry creates an empty registry.
func NewExtensionRegistry(opts ...RegistryOption) *ExtensionRegistry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ExtensionRegistry{config: cfg}
}

var _ ports.ExtensionRegistry = (*ExtensionRegistry)(nil)

// Register installs t. A schema is generated from t.Model when it is set.
func (r *ExtensionRegistry) Register(t ports.ExtensionType) error {
	if t.Name == "" {
		return fmt.Errorf("extension type name is required")
	}
	if r.config.strictMode {
		if _, exists := r.types.Load(t.Name); exists {
			return fmt.Errorf("extension type %q already registered", t.Name)
		}
	}

	doc := "{}"
	if t.Model != nil {
		data, err := schema.GenerateSchema(t.Model)
		if err != nil {
			return fmt.Errorf("failed to generate schema for %s: %w", t.Name, err)
		}
		doc = string(data)
	}

	r.types.Store(t.Name, t)
	r.schemas.Store(t.Name, doc)
	return nil
}

// Lookup returns the installed type called name.
func (r *ExtensionRegistry) Lookup(name string) (ports.ExtensionType, bool) {
	v, ok := r.types.Load(name)
	if !ok {
		return ports.ExtensionType{}, false
	}
	return v.(ports.ExtensionType), true
}

// GetSchema retrieves the JSON Schema of a type's native model.
func (r *ExtensionRegistry) GetSchema(name string) (string, bool) {
	v, ok := r.schemas.Load(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// List returns the installed type names in sorted order.
func (r *ExtensionRegistry) List() []string {
	var keys []string
	r.types.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
