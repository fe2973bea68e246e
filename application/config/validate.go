// Package config validates runtime configuration.
package config

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
)

// validate is a package-level singleton; building a validator is costly.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML name, which is what users write.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError is a single configuration problem.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid runtime config: " + strings.Join(parts, "; ")
}

// Validate checks cfg against its struct tags.
func Validate(cfg *entities.RuntimeConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !stdErrors.As(err, &ves) {
		return fmt.Errorf("config validation failed: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range ves {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// FromMap builds a configuration from key-value overrides applied on top of
// base, then validates it. Keys are the JSON field names.
func FromMap(base entities.RuntimeConfig, overrides map[string]any) (*entities.RuntimeConfig, error) {
	jsonBytes, err := json.Marshal(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config map: %w", err)
	}

	cfg := base
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
