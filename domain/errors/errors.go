// Package errors provides the error types that travel across the native
// boundary. All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
)

// ErrNotScalar is returned when a value was expected to hold exactly one
// non-missing element.
var ErrNotScalar = stdErrors.New("Must be length 1 of non-missing value")

// ErrInvalidPointer is returned when an external pointer was already
// consumed or cleared.
var ErrInvalidPointer = stdErrors.New("This external pointer is already consumed or deleted")

// DetailedError is implemented by error types that can describe themselves
// as a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// UnexpectedTypeError reports a host value of the wrong type.
type UnexpectedTypeError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("Must be %s, not %s", e.Expected, e.Actual)
}

// ToErrorDetail implements DetailedError.
func (e *UnexpectedTypeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "type", Code: e.Expected}
}

// AbortedError carries an unwind token captured by the trampoline. The
// token is still pinned; whoever consumes the error owns it.
type AbortedError struct {
	Token entities.Handle
}

func (e *AbortedError) Error() string {
	return "Aborted due to some error"
}

// ToErrorDetail implements DetailedError.
func (e *AbortedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "aborted", Code: e.Token.String()}
}

// ArgumentError attributes a conversion error to a named argument.
type ArgumentError struct {
	Err  error
	Name string
}

func (e *ArgumentError) Error() string {
	var te *UnexpectedTypeError
	switch {
	case stdErrors.As(e.Err, &te):
		return fmt.Sprintf("Argument `%s` must be %s, not %s", e.Name, te.Expected, te.Actual)
	case stdErrors.Is(e.Err, ErrNotScalar):
		return fmt.Sprintf("Argument `%s` must be length 1 of non-missing value", e.Name)
	case stdErrors.Is(e.Err, ErrInvalidPointer):
		return fmt.Sprintf("Argument `%s` is already consumed or deleted", e.Name)
	default:
		return e.Err.Error()
	}
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ArgumentError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "argument", Code: e.Name}
}

// WithArgName attributes err to the named argument. Aborted errors and
// errors that are not about a value's shape are returned unchanged, so an
// intercepted host exit keeps its token.
func WithArgName(err error, name string) error {
	if err == nil {
		return nil
	}
	var te *UnexpectedTypeError
	if stdErrors.As(err, &te) || stdErrors.Is(err, ErrNotScalar) || stdErrors.Is(err, ErrInvalidPointer) {
		return &ArgumentError{Err: err, Name: name}
	}
	return err
}

// PanicError is a native panic converted at the boundary.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	switch v := e.Value.(type) {
	case error:
		return "panic: " + v.Error()
	case string:
		return "panic: " + v
	case fmt.Stringer:
		return "panic: " + v.String()
	default:
		return "panic: panic recovered"
	}
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "panic", Stack: e.Stack}
}

// ContractError reports a violated boundary invariant, such as a tagged
// word whose payload is neither a message nor an unwind token. It is never
// recovered; the host treats it as fatal.
type ContractError struct {
	Message string
}

func (e *ContractError) Error() string {
	return "boundary contract violated: " + e.Message
}

// Unrecoverable implements Unrecoverable.
func (e *ContractError) Unrecoverable() {}

// HostExit is implemented by the host's non-local exit values. Guard
// encodes a stray exit as a message error and does not report it as a
// panic.
type HostExit interface {
	error
	HostExit()
}

// Unrecoverable is implemented by panic values that boundary guards must
// let through untouched.
type Unrecoverable interface {
	error
	Unrecoverable()
}
