package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// GuestFunc is a function the forwarding guest imports from the host module
// and exports under the same name.
type GuestFunc struct {
	Name        string
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionExport   = 0x07
	sectionCode     = 0x0a

	kindFunc   = 0x00
	typeFunc   = 0x60
	opLocalGet = 0x20
	opCall     = 0x10
	opEnd      = 0x0b
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// EncodeGuest returns the binary of a module that imports every fn from
// hostModule and re-exports it as a function that forwards its parameters
// and returns the host function's results.
//
// Function i has type i, import index i and defined index len(fns)+i.
func EncodeGuest(hostModule string, fns []GuestFunc) []byte {
	n := uint32(len(fns))

	var types, imports, funcs, exports, code []byte
	types = appendU32(types, n)
	imports = appendU32(imports, n)
	funcs = appendU32(funcs, n)
	exports = appendU32(exports, n)
	code = appendU32(code, n)

	for i, fn := range fns {
		idx := uint32(i)

		types = append(types, typeFunc)
		types = appendValueTypes(types, fn.ParamTypes)
		types = appendValueTypes(types, fn.ResultTypes)

		imports = appendName(imports, hostModule)
		imports = appendName(imports, fn.Name)
		imports = append(imports, kindFunc)
		imports = appendU32(imports, idx)

		funcs = appendU32(funcs, idx)

		exports = appendName(exports, fn.Name)
		exports = append(exports, kindFunc)
		exports = appendU32(exports, n+idx)

		body := []byte{0x00} // no locals
		for p := range fn.ParamTypes {
			body = append(body, opLocalGet)
			body = appendU32(body, uint32(p))
		}
		body = append(body, opCall)
		body = appendU32(body, idx)
		body = append(body, opEnd)

		code = appendU32(code, uint32(len(body)))
		code = append(code, body...)
	}

	out := append([]byte{}, wasmHeader...)
	out = appendSection(out, sectionType, types)
	out = appendSection(out, sectionImport, imports)
	out = appendSection(out, sectionFunction, funcs)
	out = appendSection(out, sectionExport, exports)
	out = appendSection(out, sectionCode, code)
	return out
}

// instantiateGuest instantiates the forwarding guest for the functions of
// hostModule under the module name guestName.
func instantiateGuest(ctx context.Context, runtime wazero.Runtime, hostModule, guestName string, fns []GuestFunc) (api.Module, error) {
	mod, err := runtime.InstantiateWithConfig(ctx, EncodeGuest(hostModule, fns),
		wazero.NewModuleConfig().WithName(guestName))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate guest module %q: %w", guestName, err)
	}
	return mod, nil
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendU32(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendName(out []byte, s string) []byte {
	out = appendU32(out, uint32(len(s)))
	return append(out, s...)
}

func appendValueTypes(out []byte, vts []api.ValueType) []byte {
	out = appendU32(out, uint32(len(vts)))
	return append(out, vts...)
}

// appendU32 appends v as unsigned LEB128.
func appendU32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
