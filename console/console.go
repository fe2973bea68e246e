// Package console writes to the host runtime's output channels.
package console

import (
	"io"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/unwind"
)

// Print writes msg to the host's standard output.
func Print(c ports.Console, msg string) {
	if msg != "" {
		c.WriteOut(msg)
	}
}

// Println writes msg and a line break to the host's standard output.
func Println(c ports.Console, msg string) {
	c.WriteOut(msg + "\n")
}

// Eprint writes msg to the host's error output.
func Eprint(c ports.Console, msg string) {
	if msg != "" {
		c.WriteErr(msg)
	}
}

// Eprintln writes msg and a line break to the host's error output.
func Eprintln(c ports.Console, msg string) {
	c.WriteErr(msg + "\n")
}

// Warn signals a host warning. The host may turn warnings into errors, so
// the returned error must be propagated.
func Warn(rt ports.Runtime, msg string) error {
	_, err := unwind.Protect(rt, func() entities.Handle {
		rt.Warning(msg)
		return rt.NilValue()
	})
	return err
}

type writer struct {
	c      ports.Console
	stderr bool
}

func (w writer) Write(p []byte) (int, error) {
	if w.stderr {
		w.c.WriteErr(string(p))
	} else {
		w.c.WriteOut(string(p))
	}
	return len(p), nil
}

// Writer returns an io.Writer over the host's standard output, or its error
// output when stderr is true.
func Writer(c ports.Console, stderr bool) io.Writer {
	return writer{c: c, stderr: stderr}
}
