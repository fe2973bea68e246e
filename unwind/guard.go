package unwind

import (
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

// BacktraceEnv enables full backtraces in panic reports when set to "1".
const BacktraceEnv = "REGLET_FFI_BACKTRACE"

// PanicHook reports a panic recovered by Guard.
type PanicHook func(rt ports.Runtime, p *errors.PanicError)

var panicHook atomic.Pointer[PanicHook]

// SetPanicHook replaces the hook used by Guard and returns the previous
// one. A nil hook restores ReportPanic.
func SetPanicHook(h PanicHook) PanicHook {
	var prev *PanicHook
	if h == nil {
		prev = panicHook.Swap(nil)
	} else {
		prev = panicHook.Swap(&h)
	}
	if prev == nil {
		return ReportPanic
	}
	return *prev
}

func currentHook() PanicHook {
	if h := panicHook.Load(); h != nil {
		return *h
	}
	return ReportPanic
}

// Guard runs fn as a native entry point and returns its tagged result.
// Errors are encoded with EncodeError. A panic is reported through the
// panic hook and encoded as an *errors.PanicError; values implementing
// errors.Unrecoverable keep panicking. A host exit that escapes fn is
// encoded with its own text and is not reported.
func Guard(rt ports.Runtime, fn func() (entities.Handle, error)) (w entities.Word) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if u, ok := v.(errors.Unrecoverable); ok {
			panic(u)
		}
		if x, ok := v.(errors.HostExit); ok {
			w = EncodeError(rt, x)
			return
		}
		p := &errors.PanicError{Value: v, Stack: debug.Stack()}
		currentHook()(rt, p)
		w = EncodeError(rt, p)
	}()

	res, err := fn()
	if err != nil {
		return EncodeError(rt, err)
	}
	return abi.Ok(res)
}

// ReportPanic writes a panic report to the host's error console.
func ReportPanic(rt ports.Runtime, p *errors.PanicError) {
	full := rt.Config().FullBacktrace || os.Getenv(BacktraceEnv) == "1"

	var b strings.Builder
	b.WriteString("panic occurred!\n\nOriginal message:\n")
	b.WriteString(indent(p.Error()))
	b.WriteString("\n\nBacktrace:\n")
	b.WriteString(formatBacktrace(string(p.Stack), full))
	b.WriteString("\n")
	rt.WriteErr(b.String())
}

func formatBacktrace(stack string, full bool) string {
	if !full {
		if short := trimBacktrace(stack); short != "" {
			return "    ...\n" + indent(short) + "\n    ...\n\nnote: Run with `" + BacktraceEnv + "=1` for a full backtrace.\n"
		}
	}
	return indent(strings.TrimRight(stack, "\n"))
}

// trimBacktrace keeps the frames between the panic and the guarding frame.
func trimBacktrace(stack string) string {
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "panic(") {
			start = i + 2
			break
		}
	}
	if start < 0 || start >= len(lines) {
		return ""
	}

	var kept []string
	for _, line := range lines[start:] {
		if strings.Contains(line, "/unwind.Guard(") {
			break
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
