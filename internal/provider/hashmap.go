package provider

import (
	"math"

	"memlens/internal/types"
	"memlens/internal/value"
)

// layoutKind distinguishes the two historical hashbrown layouts: OLD keeps a
// separate data pointer and stores pairs at increasing addresses from it, NEW
// stores pairs immediately behind the control array, at decreasing addresses
// from the control pointer.
type layoutKind uint8

const (
	layoutOld layoutKind = iota
	layoutNew
)

func (k layoutKind) String() string {
	if k == layoutNew {
		return "new"
	}
	return "old"
}

// tableGeometry is rebuilt on every Update and never survives past it: the
// table may have rehashed, grown or moved between debugger stops.
type tableGeometry struct {
	capacity    uint64
	controlBase uint64
	pairType    *types.Type
	pairSize    uint64
	layout      layoutKind
	elementBase uint64
	size        int
	// validSlots holds the occupied physical slot indices in ascending scan
	// order; logical child k is validSlots[k].
	validSlots []uint64
}

// locateFunc finds the raw table representation inside the inspected value.
// This hop is the only difference between the map and set variants.
type locateFunc func(*value.Value) (*value.Value, error)

// projectFunc turns a located pair value into the reported child. The map
// variant returns the pair itself; the set variant projects out the key.
type projectFunc func(p *HashTableProvider, pair *value.Value, name string) (*value.Value, error)

// HashTableProvider decodes an open-addressing hash table: it reconstructs
// the capacity, the control-byte array and the element array, then exposes
// the occupied slots as a dense logical sequence. Logical order is physical
// scan order, not insertion order.
type HashTableProvider struct {
	val     *value.Value
	locate  locateFunc
	project projectFunc

	geom tableGeometry
	err  error
}

// NewHashMap creates a provider for a HashMap value. Call Update before any
// child query.
func NewHashMap(v *value.Value) *HashTableProvider {
	return &HashTableProvider{val: v, locate: locateMapTable, project: projectPair}
}

// NewHashSet creates a provider for a HashSet value. The set shares the whole
// scanning algorithm and differs only in the table-locating hop and the key
// projection.
func NewHashSet(v *value.Value) *HashTableProvider {
	return &HashTableProvider{val: v, locate: locateSetTable, project: projectKey}
}

// locateMapTable descends HashMap -> base (hashbrown::HashMap) -> table.
func locateMapTable(v *value.Value) (*value.Value, error) {
	owner := v.Type().Name
	base, err := requireChild(v, owner, "base")
	if err != nil {
		return nil, err
	}
	return requireChild(base, owner, "table")
}

// locateSetTable descends HashSet -> base (hashbrown::HashSet) -> map -> table.
func locateSetTable(v *value.Value) (*value.Value, error) {
	owner := v.Type().Name
	base, err := requireChild(v, owner, "base")
	if err != nil {
		return nil, err
	}
	m, err := requireChild(base, owner, "map")
	if err != nil {
		return nil, err
	}
	return requireChild(m, owner, "table")
}

// Update rebuilds the table geometry from scratch. Any structural surprise
// fails the whole call: a partially decoded hash table would mislead the
// user into thinking entries are missing.
func (p *HashTableProvider) Update() error {
	p.geom = tableGeometry{}
	p.err = p.update()
	return p.err
}

func (p *HashTableProvider) update() error {
	owner := p.val.Type().Name

	table, err := p.locate(p.val)
	if err != nil {
		return err
	}
	inner, err := requireChild(table, owner, "table")
	if err != nil {
		return err
	}

	maskField, err := requireChild(inner, owner, "bucket_mask")
	if err != nil {
		return err
	}
	mask, err := readScalar(maskField, owner)
	if err != nil {
		return err
	}
	if mask == math.MaxUint64 {
		return &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "bucket_mask"}
	}
	capacity := mask + 1
	if capacity&mask != 0 {
		// bucket_mask must be one less than a power of two.
		return &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "bucket_mask"}
	}

	size, err := readCount(inner, owner, "items")
	if err != nil {
		return err
	}

	pairType, ok := table.Type().TemplateArg(0)
	if !ok {
		return &DecodeError{Kind: ErrTypeResolve, TypeName: owner}
	}
	pairType = pairType.Resolve()
	if pairType == nil || pairType.Size <= 0 {
		return &DecodeError{Kind: ErrTypeResolve, TypeName: owner}
	}

	ctrlField, err := requireChild(inner, owner, "ctrl")
	if err != nil {
		return err
	}
	ctrl, err := ctrlField.ChildAt(0)
	if err != nil {
		return &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "ctrl", Err: err}
	}
	controlBase, err := readScalar(ctrl, owner)
	if err != nil {
		return err
	}

	layout := layoutNew
	elementBase := controlBase
	if inner.HasChild("data") {
		// OLD layout: a distinct data pointer, elements at increasing
		// addresses from it.
		layout = layoutOld
		dataField, err := requireChild(inner, owner, "data")
		if err != nil {
			return err
		}
		dataPtr, err := dataField.ChildAt(0)
		if err != nil {
			return &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: "data", Err: err}
		}
		if elementBase, err = readScalar(dataPtr, owner); err != nil {
			return err
		}
	}

	valid := make([]uint64, 0, size)
	reader := p.val.Reader()
	for slot := uint64(0); slot < capacity; slot++ {
		ctrlByte, err := reader.ReadUint(controlBase+slot, 1)
		if err != nil {
			return &DecodeError{Kind: ErrRead, TypeName: owner, Err: err}
		}
		// High bit clear marks an occupied slot; empty and tombstoned
		// slots both have it set.
		if ctrlByte&0x80 == 0 {
			valid = append(valid, slot)
		}
	}
	if len(valid) != size {
		return &DecodeError{Kind: ErrCountMismatch, TypeName: owner, Count: len(valid), Declared: size}
	}

	p.geom = tableGeometry{
		capacity:    capacity,
		controlBase: controlBase,
		pairType:    pairType,
		pairSize:    uint64(pairType.Size),
		layout:      layout,
		elementBase: elementBase,
		size:        size,
		validSlots:  valid,
	}
	return nil
}

// ChildCount returns the occupied-entry count from the table header, 0 after
// a failed Update.
func (p *HashTableProvider) ChildCount() int {
	if p.err != nil {
		return 0
	}
	return p.geom.size
}

// ChildAt materializes logical child index: it maps the dense index to its
// physical slot, computes the slot's element address per the layout kind and
// projects the pair.
func (p *HashTableProvider) ChildAt(index int) (*value.Value, error) {
	if p.err != nil {
		return nil, p.err
	}
	if index < 0 || index >= p.geom.size {
		return nil, &DecodeError{Kind: ErrIndexOutOfRange, Index: index, Count: p.geom.size}
	}
	slot := p.geom.validSlots[index]

	var addr uint64
	switch p.geom.layout {
	case layoutNew:
		// Pairs are stored behind the control array, slot 0 closest to it.
		addr = p.geom.elementBase - (slot+1)*p.geom.pairSize
	default:
		addr = p.geom.elementBase + slot*p.geom.pairSize
	}

	name := childName(index)
	pair := p.val.ValueAt(name, addr, p.geom.pairType)
	return p.project(p, pair, name)
}

// projectPair reports the raw key/value pair (map variant).
func projectPair(_ *HashTableProvider, pair *value.Value, _ string) (*value.Value, error) {
	return pair, nil
}

// projectKey re-projects the pair to its first field, discarding the unit
// value half (set variant).
func projectKey(p *HashTableProvider, pair *value.Value, name string) (*value.Value, error) {
	key, err := pair.ChildAt(0)
	if err != nil {
		return nil, &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: p.val.Type().Name, Field: "0", Err: err}
	}
	return p.val.ValueAt(name, key.Addr(), key.Type()), nil
}

// ChildIndexForName maps "[k]" back to k.
func (p *HashTableProvider) ChildIndexForName(name string) int {
	return ChildIndexForName(name)
}

// HasChildren always reports true for a recognized table.
func (p *HashTableProvider) HasChildren() bool { return true }

// Err returns the last Update failure.
func (p *HashTableProvider) Err() error { return p.err }
