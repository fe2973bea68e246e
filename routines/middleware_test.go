package routines_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
	"github.com/reglet-dev/reglet-ffi/routines"
)

func TestMiddlewareOrder_FIFO(t *testing.T) {
	var callOrder []string
	tracing := func(label string) routines.Middleware {
		return func(name string, next routines.Func) routines.Func {
			return func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
				callOrder = append(callOrder, label+"-before:"+name)
				res, err := next(rt, args)
				callOrder = append(callOrder, label+"-after")
				return res, err
			}
		}
	}

	table, err := routines.NewTable("demo",
		routines.WithMiddleware(tracing("mw1")),
		routines.WithMiddleware(tracing("mw2")),
		routines.WithRoutine("noop", routines.Fn0(func(rt ports.Runtime) (entities.Handle, error) {
			callOrder = append(callOrder, "routine")
			return rt.NilValue(), nil
		})),
	)
	require.NoError(t, err)

	rt := memhost.New()
	n, _ := table.Native("noop")
	w := n(rt, nil)
	assert.False(t, abi.IsError(w))
	assert.Equal(t, []string{"mw1-before:noop", "mw2-before:noop", "routine", "mw2-after", "mw1-after"}, callOrder)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	table, err := routines.NewTable("demo",
		routines.WithMiddleware(routines.LoggingMiddleware(logger)),
		routines.WithRoutine("positive", routines.Fn1(positive)),
	)
	require.NoError(t, err)

	rt := memhost.New()
	n, _ := table.Native("positive")
	n(rt, []entities.Handle{intVec(rt, 1)})
	n(rt, []entities.Handle{intVec(rt, -1)})

	out := buf.String()
	assert.Contains(t, out, "invoking routine")
	assert.Contains(t, out, "name=positive")
	assert.Contains(t, out, "routine completed")
	assert.Contains(t, out, "routine failed")
	assert.Contains(t, out, "expected positive integer")
}

func TestInterruptMiddleware(t *testing.T) {
	ran := false
	table, err := routines.NewTable("demo",
		routines.WithMiddleware(routines.InterruptMiddleware()),
		routines.WithRoutine("noop", routines.Fn0(func(rt ports.Runtime) (entities.Handle, error) {
			ran = true
			return rt.NilValue(), nil
		})),
	)
	require.NoError(t, err)
	rt := loaded(t, table)

	require.NoError(t, rt.TopLevelExec(func() { rt.DotCall("demo", "noop") }))
	assert.True(t, ran)

	ran = false
	rt.Interrupt()
	err = rt.TopLevelExec(func() { rt.DotCall("demo", "noop") })
	var exit *memhost.Exit
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, memhost.ExitInterrupt, exit.Kind)
	assert.False(t, ran)
	assert.Equal(t, 0, rt.Stats().LiveTokens)
}

func TestNative_PanicBecomesMessage(t *testing.T) {
	table, err := routines.NewTable("demo",
		routines.WithRoutine("panic_now", routines.Fn0(func(ports.Runtime) (entities.Handle, error) {
			panic("oops")
		})),
	)
	require.NoError(t, err)

	rt := memhost.New(memhost.WithErrorOutput(&bytes.Buffer{}))
	n, _ := table.Native("panic_now")
	w := n(rt, nil)
	require.True(t, abi.IsError(w))
	assert.Equal(t, "panic: oops", rt.CharString(abi.Untag(w)))
}
