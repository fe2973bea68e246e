package entities

// RuntimeConfig holds settings for a host runtime instance.
// It can be loaded from YAML and is validated with struct tags.
type RuntimeConfig struct {
	// LogLevel is the slog level name for the boundary's own logging.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// MaxObjects caps the number of live heap objects; 0 means unlimited.
	// Allocation past the cap triggers the host's memory exhaustion exit.
	MaxObjects int `json:"max_objects" yaml:"max_objects" validate:"gte=0"`

	// ProtectStackSize caps the host's local protect stack.
	ProtectStackSize int `json:"protect_stack_size" yaml:"protect_stack_size" validate:"gte=1,lte=500000"`

	// WarnLevel mirrors the host's warning option: 0 collects warnings,
	// 1 prints them immediately and 2 converts them into errors.
	WarnLevel int `json:"warn_level" yaml:"warn_level" validate:"gte=0,lte=2"`

	// FullBacktrace disables trimming of panic backtraces.
	FullBacktrace bool `json:"full_backtrace,omitempty" yaml:"full_backtrace,omitempty"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		LogLevel:         "info",
		ProtectStackSize: 50000,
	}
}

// RuntimeConfigOption is a functional option for RuntimeConfig.
type RuntimeConfigOption func(*RuntimeConfig)

// WithMaxObjects sets the heap object cap.
func WithMaxObjects(n int) RuntimeConfigOption {
	return func(c *RuntimeConfig) {
		if n >= 0 {
			c.MaxObjects = n
		}
	}
}

// WithWarnLevel sets the warning level.
func WithWarnLevel(level int) RuntimeConfigOption {
	return func(c *RuntimeConfig) {
		c.WarnLevel = level
	}
}

// WithLogLevel sets the logging verbosity level.
func WithLogLevel(level string) RuntimeConfigOption {
	return func(c *RuntimeConfig) {
		c.LogLevel = level
	}
}

// WithFullBacktrace enables untrimmed panic backtraces.
func WithFullBacktrace(enabled bool) RuntimeConfigOption {
	return func(c *RuntimeConfig) {
		c.FullBacktrace = enabled
	}
}

// NewRuntimeConfig creates a RuntimeConfig with the given options applied
// over the defaults.
func NewRuntimeConfig(opts ...RuntimeConfigOption) RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
