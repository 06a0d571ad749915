package provider

import (
	"memlens/internal/types"
	"memlens/internal/value"
)

// VecProvider decodes a growable contiguous array. Unlike a slice, the data
// pointer is buried inside the buffer representation and may be wrapped in
// one or two generations of non-null pointer wrappers, so Update peels
// wrappers generically instead of keying on a layout version:
//
//	Vec<T> { buf: RawVec<T>, len: usize }
//	RawVec<T> { ptr: Unique<T>, cap, .. }          older toolchains
//	RawVec<T> { inner: RawVecInner { ptr, .. }, .. } newer toolchains
//	Unique<T> { pointer: *const T }                 plain pointer
//	Unique<T> { pointer: NonNull<T> / NonZero<*const T> } wrapped
type VecProvider struct {
	val *value.Value

	length    int
	elemType  *types.Type
	elemSize  uint64
	dataStart uint64
	err       error
}

// NewVec creates a provider for one Vec value. Call Update before any child
// query.
func NewVec(v *value.Value) *VecProvider {
	return &VecProvider{val: v}
}

// Update reads the length, unwraps the buffer's data pointer and resolves
// the element layout from the first template argument.
func (p *VecProvider) Update() error {
	p.length, p.elemType, p.elemSize, p.dataStart = 0, nil, 0, 0
	p.err = p.update()
	return p.err
}

func (p *VecProvider) update() error {
	owner := p.val.Type().Name

	length, err := readCount(p.val, owner, "len")
	if err != nil {
		return err
	}

	buf, err := requireChild(p.val, owner, "buf")
	if err != nil {
		return err
	}
	if buf.HasChild("inner") {
		if buf, err = buf.Child("inner"); err != nil {
			return &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "inner", Err: err}
		}
	}
	ptrField, err := requireChild(buf, owner, "ptr")
	if err != nil {
		return err
	}
	dataPtr, err := unwrapNonNull(ptrField, owner)
	if err != nil {
		return err
	}

	// The element type comes from the Vec's own template argument; the
	// pointer's pointee may have been erased to u8 in newer layouts.
	elem, ok := p.val.Type().TemplateArg(0)
	if !ok || elem.Resolve() == nil || elem.Resolve().Size <= 0 {
		return &DecodeError{Kind: ErrTypeResolve, TypeName: owner}
	}
	start, err := readScalar(dataPtr, owner)
	if err != nil {
		return err
	}

	p.length = length
	p.elemType = elem
	p.elemSize = uint64(elem.Resolve().Size)
	p.dataStart = start
	return nil
}

// unwrapNonNull resolves a Unique/NonNull/NonZero wrapper chain to the raw
// pointer value. Each generation is a single-field struct, so the walk is
// "descend into the sole member until the type is a plain pointer".
func unwrapNonNull(v *value.Value, owner string) (*value.Value, error) {
	ptr, err := requireChild(v, owner, "pointer")
	if err != nil {
		return nil, err
	}
	for depth := 0; depth < 4; depth++ {
		if ptr.Type().IsPointer() {
			return ptr, nil
		}
		inner, err := ptr.ChildAt(0)
		if err != nil {
			return nil, &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "pointer", Err: err}
		}
		ptr = inner
	}
	return nil, &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "pointer"}
}

// ChildCount returns the logical length, 0 after a failed Update.
func (p *VecProvider) ChildCount() int {
	if p.err != nil {
		return 0
	}
	return p.length
}

// ChildAt materializes element index at data_start + index*elem_size.
func (p *VecProvider) ChildAt(index int) (*value.Value, error) {
	if p.err != nil {
		return nil, p.err
	}
	if index < 0 || index >= p.length {
		return nil, &DecodeError{Kind: ErrIndexOutOfRange, Index: index, Count: p.length}
	}
	addr := p.dataStart + uint64(index)*p.elemSize
	return p.val.ValueAt(childName(index), addr, p.elemType), nil
}

// ChildIndexForName maps "[i]" back to i.
func (p *VecProvider) ChildIndexForName(name string) int {
	return ChildIndexForName(name)
}

// HasChildren always reports true for a recognized Vec.
func (p *VecProvider) HasChildren() bool { return true }

// Err returns the last Update failure.
func (p *VecProvider) Err() error { return p.err }
