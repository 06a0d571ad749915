package provider

import (
	"memlens/internal/types"
	"memlens/internal/value"
)

// SliceProvider decodes a fixed-length view over contiguous elements:
// a `length` field plus a `data_ptr` field whose pointee is the element type.
type SliceProvider struct {
	val *value.Value

	length    int
	elemType  *types.Type
	elemSize  uint64
	dataStart uint64
	err       error
}

// NewSlice creates a provider for one slice value. Call Update before any
// child query.
func NewSlice(v *value.Value) *SliceProvider {
	return &SliceProvider{val: v}
}

// Update reads the length and data pointer and resolves the element layout.
func (p *SliceProvider) Update() error {
	p.length, p.elemType, p.elemSize, p.dataStart = 0, nil, 0, 0
	p.err = p.update()
	return p.err
}

func (p *SliceProvider) update() error {
	owner := p.val.Type().Name

	length, err := readCount(p.val, owner, "length")
	if err != nil {
		return err
	}

	dataPtr, err := requireChild(p.val, owner, "data_ptr")
	if err != nil {
		return err
	}
	elem := dataPtr.Type().Pointee()
	if elem == nil || elem.Resolve() == nil || elem.Resolve().Size <= 0 {
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

// ChildCount returns the slice length, 0 after a failed Update.
func (p *SliceProvider) ChildCount() int {
	if p.err != nil {
		return 0
	}
	return p.length
}

// ChildAt materializes element index at data_start + index*elem_size.
func (p *SliceProvider) ChildAt(index int) (*value.Value, error) {
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
func (p *SliceProvider) ChildIndexForName(name string) int {
	return ChildIndexForName(name)
}

// HasChildren always reports true for a recognized slice.
func (p *SliceProvider) HasChildren() bool { return true }

// Err returns the last Update failure.
func (p *SliceProvider) Err() error { return p.err }
