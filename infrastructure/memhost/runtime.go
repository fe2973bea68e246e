package memhost

import (
	"io"
	"log/slog"
	"os"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/host/registry"
)

// Runtime is an in-process host runtime.
type Runtime struct {
	extensions ports.ExtensionRegistry
	stdout     io.Writer
	stderr     io.Writer
	logger     *slog.Logger
	packages   map[string]*loadContext
	pins       map[entities.Handle]int
	objects    []*object
	protect    []entities.Handle
	warnings   []string
	cfg        entities.RuntimeConfig

	nilValue    entities.Handle
	naString    entities.Handle
	blankString entities.Handle

	live        int
	collected   int
	tokensMade  int
	interrupted bool
}

var _ ports.HostRuntime = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig sets the runtime configuration.
func WithConfig(cfg entities.RuntimeConfig) Option {
	return func(r *Runtime) {
		r.cfg = cfg
	}
}

// WithOutput sets the writer behind the standard output console.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.stdout = w
	}
}

// WithErrorOutput sets the writer behind the error console.
func WithErrorOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.stderr = w
	}
}

// WithLogger sets the logger used for host diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithExtensionRegistry sets the registry backing installed extension types.
func WithExtensionRegistry(reg ports.ExtensionRegistry) Option {
	return func(r *Runtime) {
		r.extensions = reg
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		cfg:      entities.DefaultRuntimeConfig(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		packages: make(map[string]*loadContext),
		pins:     make(map[entities.Handle]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.extensions == nil {
		r.extensions = registry.NewExtensionRegistry()
	}

	r.nilValue = r.allocRaw(&object{typ: entities.TypeNil})
	r.naString = r.allocRaw(&object{typ: entities.TypeChar, str: "NA", na: true})
	r.blankString = r.allocRaw(&object{typ: entities.TypeChar})
	return r
}

// Config returns the runtime configuration.
func (r *Runtime) Config() entities.RuntimeConfig {
	return r.cfg
}

// Extensions returns the registry of installed extension types.
func (r *Runtime) Extensions() ports.ExtensionRegistry {
	return r.extensions
}

// WriteOut writes to the standard output console.
func (r *Runtime) WriteOut(s string) {
	_, _ = io.WriteString(r.stdout, s)
}

// WriteErr writes to the error console.
func (r *Runtime) WriteErr(s string) {
	_, _ = io.WriteString(r.stderr, s)
}

// Stats is a snapshot of heap bookkeeping.
type Stats struct {
	LiveObjects  int
	Collected    int
	Pinned       int
	ProtectDepth int
	LiveTokens   int
	TokensMade   int
}

// Stats returns current heap bookkeeping.
func (r *Runtime) Stats() Stats {
	s := Stats{
		LiveObjects:  r.live,
		Collected:    r.collected,
		Pinned:       len(r.pins),
		ProtectDepth: len(r.protect),
		TokensMade:   r.tokensMade,
	}
	for _, obj := range r.objects {
		if obj != nil && obj.typ == entities.TypeUnwindToken && obj.state == TokenLive {
			s.LiveTokens++
		}
	}
	return s
}
