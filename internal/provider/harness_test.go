package provider

import (
	"memlens/internal/mem"
	"memlens/internal/types"
	"memlens/internal/value"
)

// Fixture type descriptors shared by the decoder tests. They mirror the
// shapes debug info produces for the supported collections, with offsets
// chosen by the individual tests.

func scalarT(name string, size int) *types.Type {
	return &types.Type{Name: name, Kind: types.KindScalar, Size: size}
}

func structT(name string, size int, fields ...types.Field) *types.Type {
	return &types.Type{Name: name, Kind: types.KindStruct, Size: size, Fields: fields}
}

func field(name string, off uint64, t *types.Type) types.Field {
	return types.Field{Name: name, Offset: off, Type: t}
}

var (
	u8T    = scalarT("u8", 1)
	u32T   = scalarT("u32", 4)
	usizeT = scalarT("usize", 8)
)

// wrapPtr builds a single-field wrapper struct around t, the shape of the
// historical NonNull/NonZero pointer wrappers.
func wrapPtr(name string, inner *types.Type) *types.Type {
	return structT(name, types.PtrSize, field("pointer", 0, inner))
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func newValue(t *types.Type, addr uint64, regions ...*mem.Buffer) *value.Value {
	return value.New("v", t, addr, mem.NewMap(regions...))
}
