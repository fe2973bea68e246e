package entities

import "fmt"

// ErrorDetail is the structured form of a failed boundary call, used when a
// failure has to be reported outside the host (CLI output, logs).
// Error Types: "argument", "type", "panic", "aborted", "host", "internal"
type ErrorDetail struct {
	// Wrapped contains a wrapped error for error chains.
	Wrapped *ErrorDetail `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message" yaml:"message"`

	// Type categorizes the error.
	Type string `json:"type" yaml:"type"`

	// Code is a machine-readable code, e.g. the host exit kind.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Stack contains the stack trace for panic errors.
	Stack []byte `json:"stack,omitempty" yaml:"-"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithCode sets the code and returns the same ErrorDetail.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
