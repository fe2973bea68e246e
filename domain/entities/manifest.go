package entities

// Manifest describes what a native package exposes to the host.
type Manifest struct {
	Package   string          `json:"package" yaml:"package"`
	Routines  []RoutineInfo   `json:"routines" yaml:"routines"`
	InitSteps []string        `json:"init_steps,omitempty" yaml:"init_steps,omitempty"`
	Types     []ExtensionInfo `json:"extension_types,omitempty" yaml:"extension_types,omitempty"`
}

// RoutineInfo is one row of the registration table.
type RoutineInfo struct {
	Name  string `json:"name" yaml:"name"`
	Arity int    `json:"arity" yaml:"arity"`
}

// ExtensionInfo describes an installed extension value type.
type ExtensionInfo struct {
	Name   string `json:"name" yaml:"name"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}
