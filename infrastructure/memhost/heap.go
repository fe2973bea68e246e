package memhost

import (
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
)

// handleAlign is the alignment of every handle the heap hands out.
const handleAlign = 8

type object struct {
	ext     any
	exit    *Exit
	extType string
	str     string
	ints    []int32
	reals   []float64
	lgls    []entities.Logical
	elems   []entities.Handle
	typ     entities.ValueType
	state   TokenState
	na      bool
	marked  bool
}

func handleFor(i int) entities.Handle {
	return entities.Handle((i + 1) * handleAlign)
}

func (r *Runtime) get(h entities.Handle) *object {
	if h == 0 || uintptr(h)%handleAlign != 0 {
		r.fatal("invalid handle %s", h)
	}
	i := int(uintptr(h)/handleAlign) - 1
	if i >= len(r.objects) {
		r.fatal("invalid handle %s", h)
	}
	obj := r.objects[i]
	if obj == nil {
		r.fatal("use of collected value %s", h)
	}
	return obj
}

// allocRaw stores obj without checking the object limit.
func (r *Runtime) allocRaw(obj *object) entities.Handle {
	r.objects = append(r.objects, obj)
	r.live++
	return handleFor(len(r.objects) - 1)
}

// alloc stores obj, collecting first when the heap is at its limit. If the
// limit still cannot be honoured the allocation exits with ExitMemory.
func (r *Runtime) alloc(obj *object, length int) entities.Handle {
	if max := r.cfg.MaxObjects; max > 0 && r.live >= max {
		r.Collect()
		if r.live >= max {
			r.exit(&Exit{Kind: ExitMemory, Message: fmt.Sprintf("cannot allocate vector of length %d", length)})
		}
	}
	return r.allocRaw(obj)
}

// Valid reports whether h refers to a live value.
func (r *Runtime) Valid(h entities.Handle) bool {
	if h == 0 || uintptr(h)%handleAlign != 0 {
		return false
	}
	i := int(uintptr(h)/handleAlign) - 1
	return i < len(r.objects) && r.objects[i] != nil
}

// NilValue returns the host's null value.
func (r *Runtime) NilValue() entities.Handle {
	return r.nilValue
}

// NAString returns the missing string marker.
func (r *Runtime) NAString() entities.Handle {
	return r.naString
}

// TypeOf returns the value type of h.
func (r *Runtime) TypeOf(h entities.Handle) entities.ValueType {
	return r.get(h).typ
}

// Length returns the element count of h. Extension values report the
// length computed by their type.
func (r *Runtime) Length(h entities.Handle) int {
	obj := r.get(h)
	switch obj.typ {
	case entities.TypeLogical:
		return len(obj.lgls)
	case entities.TypeInteger:
		return len(obj.ints)
	case entities.TypeReal:
		return len(obj.reals)
	case entities.TypeString, entities.TypeList:
		return len(obj.elems)
	case entities.TypeExtension:
		t := r.extensionType(obj.extType)
		return t.Length(r, obj.ext)
	case entities.TypeNil:
		return 0
	default:
		return 1
	}
}

// AllocVector allocates a vector. It exits if the heap limit is reached.
func (r *Runtime) AllocVector(t entities.ValueType, n int) entities.Handle {
	if n < 0 {
		r.RaiseError("negative length vectors are not allowed")
	}
	obj := &object{typ: t}
	switch t {
	case entities.TypeLogical:
		obj.lgls = make([]entities.Logical, n)
	case entities.TypeInteger:
		obj.ints = make([]int32, n)
	case entities.TypeReal:
		obj.reals = make([]float64, n)
	case entities.TypeString:
		obj.elems = make([]entities.Handle, n)
		for i := range obj.elems {
			obj.elems[i] = r.blankString
		}
	case entities.TypeList:
		obj.elems = make([]entities.Handle, n)
		for i := range obj.elems {
			obj.elems[i] = r.nilValue
		}
	default:
		r.RaiseError(fmt.Sprintf("invalid type '%s' for vector allocation", t))
	}
	return r.alloc(obj, n)
}

// MakeChar allocates a host string. It exits if the heap limit is reached.
func (r *Runtime) MakeChar(s string) entities.Handle {
	return r.alloc(&object{typ: entities.TypeChar, str: s}, len(s))
}

// MakeErrorString allocates an error message payload without limits.
func (r *Runtime) MakeErrorString(s string) entities.Handle {
	return r.allocRaw(&object{typ: entities.TypeChar, str: s})
}

// CharString returns the Go string held by a char value.
func (r *Runtime) CharString(h entities.Handle) string {
	obj := r.expect(h, entities.TypeChar, "CHAR")
	return obj.str
}

// IsNA reports whether a char value is the missing string marker.
func (r *Runtime) IsNA(h entities.Handle) bool {
	return r.get(h).na
}

func (r *Runtime) expect(h entities.Handle, t entities.ValueType, accessor string) *object {
	obj := r.get(h)
	if obj.typ != t {
		r.RaiseError(fmt.Sprintf("%s() can only be applied to a '%s', not a '%s'", accessor, t, obj.typ))
	}
	return obj
}

func (r *Runtime) checkIndex(i, n int, accessor string) {
	if i < 0 || i >= n {
		r.RaiseError(fmt.Sprintf("attempt to access index %d/%d in %s", i, n, accessor))
	}
}

// IntegerElt returns element i of an integer vector.
func (r *Runtime) IntegerElt(h entities.Handle, i int) int32 {
	obj := r.expect(h, entities.TypeInteger, "INTEGER_ELT")
	r.checkIndex(i, len(obj.ints), "INTEGER_ELT")
	return obj.ints[i]
}

// SetIntegerElt sets element i of an integer vector.
func (r *Runtime) SetIntegerElt(h entities.Handle, i int, v int32) {
	obj := r.expect(h, entities.TypeInteger, "SET_INTEGER_ELT")
	r.checkIndex(i, len(obj.ints), "SET_INTEGER_ELT")
	obj.ints[i] = v
}

// RealElt returns element i of a real vector.
func (r *Runtime) RealElt(h entities.Handle, i int) float64 {
	obj := r.expect(h, entities.TypeReal, "REAL_ELT")
	r.checkIndex(i, len(obj.reals), "REAL_ELT")
	return obj.reals[i]
}

// SetRealElt sets element i of a real vector.
func (r *Runtime) SetRealElt(h entities.Handle, i int, v float64) {
	obj := r.expect(h, entities.TypeReal, "SET_REAL_ELT")
	r.checkIndex(i, len(obj.reals), "SET_REAL_ELT")
	obj.reals[i] = v
}

// LogicalElt returns element i of a logical vector.
func (r *Runtime) LogicalElt(h entities.Handle, i int) entities.Logical {
	obj := r.expect(h, entities.TypeLogical, "LOGICAL_ELT")
	r.checkIndex(i, len(obj.lgls), "LOGICAL_ELT")
	return obj.lgls[i]
}

// SetLogicalElt sets element i of a logical vector.
func (r *Runtime) SetLogicalElt(h entities.Handle, i int, v entities.Logical) {
	obj := r.expect(h, entities.TypeLogical, "SET_LOGICAL_ELT")
	r.checkIndex(i, len(obj.lgls), "SET_LOGICAL_ELT")
	obj.lgls[i] = v
}

// StringElt returns the char handle at element i of a string vector.
func (r *Runtime) StringElt(h entities.Handle, i int) entities.Handle {
	obj := r.expect(h, entities.TypeString, "STRING_ELT")
	r.checkIndex(i, len(obj.elems), "STRING_ELT")
	return obj.elems[i]
}

// SetStringElt stores a char handle at element i of a string vector.
func (r *Runtime) SetStringElt(h entities.Handle, i int, v entities.Handle) {
	obj := r.expect(h, entities.TypeString, "SET_STRING_ELT")
	r.checkIndex(i, len(obj.elems), "SET_STRING_ELT")
	r.expect(v, entities.TypeChar, "SET_STRING_ELT")
	obj.elems[i] = v
}

// ListElt returns element i of a list. On an extension value it calls the
// type's Elt method.
func (r *Runtime) ListElt(h entities.Handle, i int) entities.Handle {
	obj := r.get(h)
	if obj.typ == entities.TypeExtension {
		t := r.extensionType(obj.extType)
		r.checkIndex(i, t.Length(r, obj.ext), "VECTOR_ELT")
		return t.Elt(r, obj.ext, i)
	}
	obj = r.expect(h, entities.TypeList, "VECTOR_ELT")
	r.checkIndex(i, len(obj.elems), "VECTOR_ELT")
	return obj.elems[i]
}

// SetListElt stores v at element i of a list.
func (r *Runtime) SetListElt(h entities.Handle, i int, v entities.Handle) {
	obj := r.expect(h, entities.TypeList, "SET_VECTOR_ELT")
	r.checkIndex(i, len(obj.elems), "SET_VECTOR_ELT")
	r.get(v)
	obj.elems[i] = v
}

// MakeExternalPtr wraps a native value. It exits if the heap limit is
// reached.
func (r *Runtime) MakeExternalPtr(v any) entities.Handle {
	return r.alloc(&object{typ: entities.TypeExternalPtr, ext: v}, 1)
}

// ExternalPtrAddr returns the wrapped value, or nil once cleared.
func (r *Runtime) ExternalPtrAddr(h entities.Handle) any {
	return r.expect(h, entities.TypeExternalPtr, "R_ExternalPtrAddr").ext
}

// ClearExternalPtr drops the wrapped value.
func (r *Runtime) ClearExternalPtr(h entities.Handle) {
	r.expect(h, entities.TypeExternalPtr, "R_ClearExternalPtr").ext = nil
}

// ExtensionData returns the native payload of an extension value.
func (r *Runtime) ExtensionData(h entities.Handle) any {
	return r.expect(h, entities.TypeExtension, "ExtensionData").ext
}

// ExtensionTypeName returns the installed type name of an extension value.
func (r *Runtime) ExtensionTypeName(h entities.Handle) string {
	return r.expect(h, entities.TypeExtension, "ExtensionTypeName").extType
}

// Pin preserves h across collections until a matching Unpin.
func (r *Runtime) Pin(h entities.Handle) {
	r.get(h)
	r.pins[h]++
}

// Unpin releases one Pin. Unpinning an unwind token consumes it: a token
// can be released or continued, but only once.
func (r *Runtime) Unpin(h entities.Handle) {
	obj := r.get(h)
	if obj.typ == entities.TypeUnwindToken {
		if obj.state != TokenLive {
			r.fatal("unwind token %s already %s", h, obj.state)
		}
		obj.state = TokenReleased
		obj.exit = nil
	}
	r.release(h)
}

func (r *Runtime) release(h entities.Handle) {
	switch n := r.pins[h]; {
	case n > 1:
		r.pins[h] = n - 1
	case n == 1:
		delete(r.pins, h)
	}
}

// Protect pushes h on the local protect stack and returns it.
func (r *Runtime) Protect(h entities.Handle) entities.Handle {
	if len(r.protect) >= r.cfg.ProtectStackSize {
		r.RaiseError("protect(): protection stack overflow")
	}
	r.get(h)
	r.protect = append(r.protect, h)
	return h
}

// Unprotect pops n handles off the local protect stack.
func (r *Runtime) Unprotect(n int) {
	if n > len(r.protect) {
		r.fatal("unprotect(): only %d protected items", len(r.protect))
	}
	r.protect = r.protect[:len(r.protect)-n]
}

// Collect frees every value that is not reachable from a pin, the protect
// stack or the host's constants. It returns the number of values freed.
func (r *Runtime) Collect() int {
	for _, obj := range r.objects {
		if obj != nil {
			obj.marked = false
		}
	}

	r.mark(r.nilValue)
	r.mark(r.naString)
	r.mark(r.blankString)
	for h := range r.pins {
		r.mark(h)
	}
	for _, h := range r.protect {
		r.mark(h)
	}

	freed := 0
	for i, obj := range r.objects {
		if obj != nil && !obj.marked {
			r.objects[i] = nil
			freed++
		}
	}
	r.live -= freed
	r.collected += freed
	if freed > 0 {
		r.logger.Debug("memhost: collected values", "freed", freed, "live", r.live)
	}
	return freed
}

func (r *Runtime) mark(h entities.Handle) {
	obj := r.get(h)
	if obj.marked {
		return
	}
	obj.marked = true
	for _, e := range obj.elems {
		r.mark(e)
	}
}
