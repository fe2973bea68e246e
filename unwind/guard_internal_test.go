package unwind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleStack = `goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/reglet-dev/reglet-ffi/unwind.Guard.func1()
	/src/unwind/guard.go:60 +0x8a
panic({0x5d1e40?, 0x6b2f30?})
	/usr/local/go/src/runtime/panic.go:785 +0x132
example.com/demo.explode(...)
	/src/demo/demo.go:10
example.com/demo.Run()
	/src/demo/demo.go:20 +0x25
github.com/reglet-dev/reglet-ffi/unwind.Guard(0xc000010000, 0xc000012000)
	/src/unwind/guard.go:66 +0x6b
main.main()
	/src/main.go:5 +0x1d
`

func TestTrimBacktrace(t *testing.T) {
	got := trimBacktrace(sampleStack)
	assert.Equal(t, "example.com/demo.explode(...)\n\t/src/demo/demo.go:10\nexample.com/demo.Run()\n\t/src/demo/demo.go:20 +0x25", got)

	assert.Empty(t, trimBacktrace("goroutine 1 [running]:\nmain.main()\n"))
}

func TestFormatBacktrace(t *testing.T) {
	short := formatBacktrace(sampleStack, false)
	assert.Contains(t, short, "    ...\n    example.com/demo.explode(...)")
	assert.Contains(t, short, "note: Run with `REGLET_FFI_BACKTRACE=1` for a full backtrace.")
	assert.NotContains(t, short, "main.main()")

	full := formatBacktrace(sampleStack, true)
	assert.Contains(t, full, "    main.main()")

	fallback := formatBacktrace("goroutine 1 [running]:\n", false)
	assert.Equal(t, "    goroutine 1 [running]:", fallback)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "    a\n    b", indent("a\nb"))
}
