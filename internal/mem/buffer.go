package mem

import "fmt"

// ReadError reports a read that fell outside the mapped regions.
type ReadError struct {
	Addr   uint64
	Len    int
	Reason string
}

func (e *ReadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("read %d bytes at 0x%X: %s", e.Len, e.Addr, e.Reason)
}

// Buffer is a Reader over one contiguous region of memory, typically the
// contents of a snapshot region.
type Buffer struct {
	Base uint64
	Data []byte
}

// NewBuffer creates a buffer covering [base, base+len(data)).
func NewBuffer(base uint64, data []byte) *Buffer {
	return &Buffer{Base: base, Data: data}
}

// Contains reports whether addr falls inside the buffer's range.
func (b *Buffer) Contains(addr uint64) bool {
	return addr >= b.Base && addr-b.Base < uint64(len(b.Data))
}

// End returns the address immediately after the last byte.
func (b *Buffer) End() uint64 {
	return b.Base + uint64(len(b.Data))
}

// ReadBytes implements Reader.
func (b *Buffer) ReadBytes(addr uint64, buf []byte) error {
	if addr < b.Base {
		return &ReadError{Addr: addr, Len: len(buf), Reason: fmt.Sprintf("before region base 0x%X", b.Base)}
	}
	off := addr - b.Base
	if off > uint64(len(b.Data)) || uint64(len(buf)) > uint64(len(b.Data))-off {
		return &ReadError{Addr: addr, Len: len(buf), Reason: fmt.Sprintf("beyond region [0x%X, 0x%X)", b.Base, b.End())}
	}
	copy(buf, b.Data[off:off+uint64(len(buf))])
	return nil
}

// ReadUint implements Reader.
func (b *Buffer) ReadUint(addr uint64, width int) (uint64, error) {
	return readUint(b, addr, width)
}

// Map is a Reader over a set of disjoint regions. A read must be satisfied
// entirely by one region; reads spanning a gap fail.
type Map struct {
	regions []*Buffer
}

// NewMap builds a map over the given regions.
func NewMap(regions ...*Buffer) *Map {
	m := &Map{}
	for _, r := range regions {
		m.Add(r)
	}
	return m
}

// Add registers one region.
func (m *Map) Add(r *Buffer) {
	if r == nil {
		return
	}
	m.regions = append(m.regions, r)
}

func (m *Map) regionFor(addr uint64) *Buffer {
	for _, r := range m.regions {
		if r.Contains(addr) {
			return r
		}
	}
	return nil
}

// ReadBytes implements Reader.
func (m *Map) ReadBytes(addr uint64, buf []byte) error {
	r := m.regionFor(addr)
	if r == nil {
		return &ReadError{Addr: addr, Len: len(buf), Reason: "address not mapped"}
	}
	return r.ReadBytes(addr, buf)
}

// ReadUint implements Reader.
func (m *Map) ReadUint(addr uint64, width int) (uint64, error) {
	return readUint(m, addr, width)
}
