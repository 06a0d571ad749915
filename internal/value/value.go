// Package value realizes the host debugger's value-inspection protocol over a
// mem.Reader: a Value is a display name plus a type descriptor pinned to an
// absolute address. All operations are read-only views into debuggee memory.
package value

import (
	"fmt"

	"memlens/internal/mem"
	"memlens/internal/types"
)

// NoFieldError reports a named or positional member the value's type does not
// have. Decoders treat it as the unrecognized-layout condition; it is never a
// silent fallback.
type NoFieldError struct {
	TypeName string
	Field    string
	Index    int
}

func (e *NoFieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field != "" {
		return fmt.Sprintf("type %q has no field %q", e.TypeName, e.Field)
	}
	return fmt.Sprintf("type %q has no field at index %d", e.TypeName, e.Index)
}

// Value is one typed location in debuggee memory.
type Value struct {
	name string
	typ  *types.Type
	addr uint64
	mem  mem.Reader
}

// New creates a value of type typ at addr, read through r.
func New(name string, typ *types.Type, addr uint64, r mem.Reader) *Value {
	return &Value{name: name, typ: typ, addr: addr, mem: r}
}

func (v *Value) Name() string      { return v.name }
func (v *Value) Type() *types.Type { return v.typ }
func (v *Value) Addr() uint64      { return v.addr }

// Reader exposes the underlying memory access, for scans that read raw
// scalars next to the value (control bytes, for one).
func (v *Value) Reader() mem.Reader { return v.mem }

// HasChild reports whether the value's type has a member with that name.
// Layout-version detection probes fields structurally instead of relying on
// an error path.
func (v *Value) HasChild(name string) bool {
	_, ok := v.typ.Field(name)
	return ok
}

// Child returns the named struct member as a value at its field offset.
func (v *Value) Child(name string) (*Value, error) {
	f, ok := v.typ.Field(name)
	if !ok {
		return nil, &NoFieldError{TypeName: v.typ.Name, Field: name}
	}
	return New(name, f.Type, v.addr+f.Offset, v.mem), nil
}

// ChildAt returns the i-th struct member. Tuple structs expose their single
// payload at index 0, which is how pointer wrappers are peeled.
func (v *Value) ChildAt(i int) (*Value, error) {
	f, ok := v.typ.FieldAt(i)
	if !ok {
		return nil, &NoFieldError{TypeName: v.typ.Name, Index: i}
	}
	return New(f.Name, f.Type, v.addr+f.Offset, v.mem), nil
}

// Uint reads the value as a little-endian unsigned scalar of its byte size.
// Pointers read as their 8-byte representation.
func (v *Value) Uint() (uint64, error) {
	r := v.typ.Resolve()
	if r == nil {
		return 0, fmt.Errorf("value %q: unresolvable type %q", v.name, v.typ.Name)
	}
	return v.mem.ReadUint(v.addr, r.Size)
}

// ValueAt constructs a new typed value at an arbitrary absolute address,
// sharing this value's memory access. This is the synthetic-child
// constructor: decoders use it to materialize elements they located.
func (v *Value) ValueAt(name string, addr uint64, typ *types.Type) *Value {
	return New(name, typ, addr, v.mem)
}
