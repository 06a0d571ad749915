package types

import "fmt"

// Kind enumerates the structural kinds of type descriptors.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindStruct
	KindPointer
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindPointer:
		return "pointer"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// PtrSize is the pointer width in bytes. Only 64-bit targets are supported.
const PtrSize = 8

// Field is a named member of a struct type at a fixed byte offset.
type Field struct {
	Name   string
	Offset uint64
	Type   *Type
}

// Type describes the in-memory layout of one debuggee type. Descriptors are
// supplied by the host (debug info, snapshot type table); the decoders never
// infer layout from raw bytes.
type Type struct {
	// Name is the fully qualified display name, e.g.
	// "std::collections::hash::map::HashMap<i32, alloc::string::String>".
	Name string
	Kind Kind
	// Size is the byte size of one value of this type.
	Size int
	// Elem is the pointee for KindPointer and the aliased type for
	// KindTypedef; nil otherwise.
	Elem *Type
	// TemplateArgs holds the generic arguments in declaration order.
	TemplateArgs []*Type
	// Fields holds struct members in declaration order.
	Fields []Field
}

// Field returns the named struct member, resolving typedefs first.
func (t *Type) Field(name string) (Field, bool) {
	r := t.Resolve()
	if r == nil {
		return Field{}, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldAt returns the i-th struct member, resolving typedefs first.
func (t *Type) FieldAt(i int) (Field, bool) {
	r := t.Resolve()
	if r == nil || i < 0 || i >= len(r.Fields) {
		return Field{}, false
	}
	return r.Fields[i], true
}

// Resolve chases typedef aliases to the concrete type. A nil receiver, a
// broken alias or an alias cycle resolves to nil.
func (t *Type) Resolve() *Type {
	cur := t
	for depth := 0; cur != nil && cur.Kind == KindTypedef; depth++ {
		if depth > 32 {
			return nil
		}
		cur = cur.Elem
	}
	return cur
}

// IsPointer reports whether the resolved type is a raw pointer.
func (t *Type) IsPointer() bool {
	r := t.Resolve()
	return r != nil && r.Kind == KindPointer
}

// Pointee returns the resolved pointee type of a pointer, or nil.
func (t *Type) Pointee() *Type {
	r := t.Resolve()
	if r == nil || r.Kind != KindPointer {
		return nil
	}
	return r.Elem
}

// TemplateArg returns the i-th generic argument of the resolved type.
func (t *Type) TemplateArg(i int) (*Type, bool) {
	r := t.Resolve()
	if r == nil || i < 0 || i >= len(r.TemplateArgs) {
		return nil, false
	}
	if r.TemplateArgs[i] == nil {
		return nil, false
	}
	return r.TemplateArgs[i], true
}

// PointerTo synthesizes a pointer descriptor for t. Used when a byte pointer
// has to be reinterpreted as a pointer to a different element type.
func PointerTo(t *Type) *Type {
	name := "<invalid>"
	if t != nil {
		name = t.Name
	}
	return &Type{
		Name: "*" + name,
		Kind: KindPointer,
		Size: PtrSize,
		Elem: t,
	}
}
