// Package snapshot is the post-mortem container the CLI and tests decode
// against: raw memory regions, a type table and named root values, standing
// in for a live debugger's read API.
package snapshot

import (
	"fmt"

	"memlens/internal/mem"
	"memlens/internal/types"
	"memlens/internal/value"
)

// SchemaVersion gates the binary encoding; bump when the record shapes
// change.
const SchemaVersion uint16 = 1

// NoType marks an absent type reference in serialized records.
const NoType int32 = -1

// Snapshot is the serialized image. Type references are indices into Types.
type Snapshot struct {
	Schema  uint16
	Types   []TypeRec
	Regions []Region
	Roots   []Root
}

// TypeRec is one serialized type descriptor.
type TypeRec struct {
	Name         string
	Kind         uint8
	Size         int
	Elem         int32
	TemplateArgs []int32
	Fields       []FieldRec
}

// FieldRec is one serialized struct member.
type FieldRec struct {
	Name   string
	Offset uint64
	Type   int32
}

// Region is one contiguous chunk of captured memory.
type Region struct {
	Base uint64
	Data []byte
}

// Root names a value to inspect.
type Root struct {
	Name string
	Type int32
	Addr uint64
}

// TypeTable links the serialized records into a descriptor graph. Descriptors
// are allocated first and wired second, so self-referential types (a struct
// holding a pointer to itself) come out connected.
func (s *Snapshot) TypeTable() ([]*types.Type, error) {
	out := make([]*types.Type, len(s.Types))
	for i := range out {
		out[i] = &types.Type{}
	}
	deref := func(ref int32) (*types.Type, error) {
		if ref == NoType {
			return nil, nil
		}
		if ref < 0 || int(ref) >= len(out) {
			return nil, fmt.Errorf("type reference %d out of range [0, %d)", ref, len(out))
		}
		return out[ref], nil
	}

	for i, rec := range s.Types {
		t := out[i]
		t.Name = rec.Name
		t.Kind = types.Kind(rec.Kind)
		if t.Kind == types.KindInvalid || t.Kind > types.KindTypedef {
			return nil, fmt.Errorf("type %q: invalid kind %d", rec.Name, rec.Kind)
		}
		t.Size = rec.Size

		elem, err := deref(rec.Elem)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", rec.Name, err)
		}
		t.Elem = elem

		for _, ref := range rec.TemplateArgs {
			arg, err := deref(ref)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", rec.Name, err)
			}
			t.TemplateArgs = append(t.TemplateArgs, arg)
		}
		for _, f := range rec.Fields {
			ft, err := deref(f.Type)
			if err != nil {
				return nil, fmt.Errorf("type %q, field %q: %w", rec.Name, f.Name, err)
			}
			t.Fields = append(t.Fields, types.Field{Name: f.Name, Offset: f.Offset, Type: ft})
		}
	}
	return out, nil
}

// MemoryMap builds the reader over the captured regions.
func (s *Snapshot) MemoryMap() *mem.Map {
	m := mem.NewMap()
	for _, r := range s.Regions {
		m.Add(mem.NewBuffer(r.Base, r.Data))
	}
	return m
}

// RootValues materializes the named roots over the snapshot's memory.
func (s *Snapshot) RootValues() ([]*value.Value, error) {
	table, err := s.TypeTable()
	if err != nil {
		return nil, err
	}
	m := s.MemoryMap()
	out := make([]*value.Value, 0, len(s.Roots))
	for _, r := range s.Roots {
		if r.Type < 0 || int(r.Type) >= len(table) {
			return nil, fmt.Errorf("root %q: type reference %d out of range", r.Name, r.Type)
		}
		out = append(out, value.New(r.Name, table[r.Type], r.Addr, m))
	}
	return out, nil
}
