package provider

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memlens/internal/mem"
	"memlens/internal/types"
	"memlens/internal/value"
)

// tableFixture assembles the type graph and memory image of one hashbrown
// table. The header lives at 0x100, the control bytes at ctrlBase.
type tableFixture struct {
	old      bool
	set      bool
	mask     uint64
	items    uint64
	ctrl     []byte
	ctrlBase uint64
	dataBase uint64 // old layout only
	pair     *types.Type
}

func pairI32I32() *types.Type {
	return structT("(i32, i32)", 16,
		field("0", 0, u32T),
		field("1", 4, u32T),
	)
}

func pairI32Unit() *types.Type {
	return structT("(i32, ())", 4, field("0", 0, u32T))
}

func (f tableFixture) value() *value.Value {
	ctrlWrap := wrapPtr("core::ptr::non_null::NonNull<u8>", types.PointerTo(u8T))

	var inner *types.Type
	var header []byte
	if f.old {
		inner = structT("hashbrown::raw::RawTableInner", 40,
			field("bucket_mask", 0, usizeT),
			field("ctrl", 8, ctrlWrap),
			field("data", 16, wrapPtr("core::ptr::non_null::NonNull<(K, V)>", types.PointerTo(f.pair))),
			field("growth_left", 24, usizeT),
			field("items", 32, usizeT),
		)
		header = concat(le64(f.mask), le64(f.ctrlBase), le64(f.dataBase), le64(0), le64(f.items))
	} else {
		inner = structT("hashbrown::raw::RawTableInner", 32,
			field("bucket_mask", 0, usizeT),
			field("ctrl", 8, ctrlWrap),
			field("growth_left", 16, usizeT),
			field("items", 24, usizeT),
		)
		header = concat(le64(f.mask), le64(f.ctrlBase), le64(0), le64(f.items))
	}

	rawTable := structT("hashbrown::raw::RawTable<(K, V)>", inner.Size, field("table", 0, inner))
	rawTable.TemplateArgs = []*types.Type{f.pair}

	if f.set {
		hbMap := structT("hashbrown::map::HashMap<K, ()>", rawTable.Size, field("table", 0, rawTable))
		hbSet := structT("hashbrown::set::HashSet<K>", rawTable.Size, field("map", 0, hbMap))
		outer := structT("std::collections::hash::set::HashSet<i32>", rawTable.Size, field("base", 0, hbSet))
		return newValue(outer, 0x100,
			mem.NewBuffer(0x100, header),
			mem.NewBuffer(f.ctrlBase, f.ctrl),
		)
	}
	hbMap := structT("hashbrown::map::HashMap<K, V>", rawTable.Size, field("table", 0, rawTable))
	outer := structT("std::collections::hash::map::HashMap<i32, i32>", rawTable.Size, field("base", 0, hbMap))
	return newValue(outer, 0x100,
		mem.NewBuffer(0x100, header),
		mem.NewBuffer(f.ctrlBase, f.ctrl),
	)
}

func childAddrs(t *testing.T, p Provider) []uint64 {
	t.Helper()
	addrs := make([]uint64, 0, p.ChildCount())
	for i := 0; i < p.ChildCount(); i++ {
		c, err := p.ChildAt(i)
		if err != nil {
			t.Fatalf("ChildAt(%d): %v", i, err)
		}
		addrs = append(addrs, c.Addr())
	}
	return addrs
}

func TestHashMapNewLayout(t *testing.T) {
	f := tableFixture{
		mask:     7,
		items:    3,
		ctrl:     []byte{0, 0x80, 0, 0x80, 0x80, 0x80, 0, 0x80},
		ctrlBase: 0x2000,
		pair:     pairI32I32(),
	}
	p := NewHashMap(f.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := p.ChildCount(); got != 3 {
		t.Fatalf("ChildCount = %d, want 3", got)
	}
	if diff := cmp.Diff([]uint64{0, 2, 6}, p.geom.validSlots); diff != "" {
		t.Fatalf("occupied slots (-want +got):\n%s", diff)
	}
	// Occupied slots 0, 2, 6; pairs sit behind the control array.
	want := []uint64{
		0x2000 - 1*16,
		0x2000 - 3*16,
		0x2000 - 7*16, // 0x1F30
	}
	if diff := cmp.Diff(want, childAddrs(t, p)); diff != "" {
		t.Fatalf("child addresses mismatch (-want +got):\n%s", diff)
	}
	c, err := p.ChildAt(2)
	if err != nil {
		t.Fatalf("ChildAt(2): %v", err)
	}
	if c.Addr() != 0x1F30 {
		t.Fatalf("ChildAt(2) addr = 0x%X, want 0x1F30", c.Addr())
	}
	if c.Type() != p.geom.pairType {
		t.Fatalf("map child should be the raw pair")
	}
	if c.Name() != "[2]" {
		t.Fatalf("child name = %q, want [2]", c.Name())
	}
}

func TestHashMapOldLayout(t *testing.T) {
	f := tableFixture{
		old:      true,
		mask:     7,
		items:    3,
		ctrl:     []byte{0, 0x80, 0, 0x80, 0x80, 0x80, 0, 0x80},
		ctrlBase: 0x2000,
		dataBase: 0x3000,
		pair:     pairI32I32(),
	}
	p := NewHashMap(f.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []uint64{
		0x3000 + 0*16,
		0x3000 + 2*16,
		0x3000 + 6*16,
	}
	if diff := cmp.Diff(want, childAddrs(t, p)); diff != "" {
		t.Fatalf("child addresses mismatch (-want +got):\n%s", diff)
	}
}

// Boundary slots 0 and capacity-1 must map exactly in both layouts.
func TestHashMapBoundarySlots(t *testing.T) {
	ctrl := []byte{0, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0}

	newF := tableFixture{mask: 7, items: 2, ctrl: ctrl, ctrlBase: 0x2000, pair: pairI32I32()}
	p := NewHashMap(newF.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update(new): %v", err)
	}
	if diff := cmp.Diff([]uint64{0x2000 - 16, 0x2000 - 8*16}, childAddrs(t, p)); diff != "" {
		t.Fatalf("new-layout boundary addresses (-want +got):\n%s", diff)
	}

	oldF := tableFixture{old: true, mask: 7, items: 2, ctrl: ctrl, ctrlBase: 0x2000, dataBase: 0x3000, pair: pairI32I32()}
	p = NewHashMap(oldF.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update(old): %v", err)
	}
	if diff := cmp.Diff([]uint64{0x3000, 0x3000 + 7*16}, childAddrs(t, p)); diff != "" {
		t.Fatalf("old-layout boundary addresses (-want +got):\n%s", diff)
	}
}

func TestHashMapEmptyTable(t *testing.T) {
	f := tableFixture{mask: 0, items: 0, ctrl: []byte{0xFF}, ctrlBase: 0x2000, pair: pairI32I32()}
	p := NewHashMap(f.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.ChildCount() != 0 {
		t.Fatalf("empty table should have 0 children")
	}
	if !p.HasChildren() {
		t.Fatalf("HasChildren stays true for a recognized table")
	}
}

func TestHashMapCountMismatch(t *testing.T) {
	f := tableFixture{
		mask:     7,
		items:    2, // header disagrees with the three occupied slots
		ctrl:     []byte{0, 0x80, 0, 0x80, 0x80, 0x80, 0, 0x80},
		ctrlBase: 0x2000,
		pair:     pairI32I32(),
	}
	p := NewHashMap(f.value())
	err := p.Update()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != ErrCountMismatch {
		t.Fatalf("Update = %v, want count-mismatch", err)
	}
	if de.Count != 3 || de.Declared != 2 {
		t.Fatalf("mismatch detail = scanned %d declared %d, want 3/2", de.Count, de.Declared)
	}
	if p.ChildCount() != 0 {
		t.Fatalf("failed provider should report 0 children")
	}
}

func TestHashMapMissingBucketMask(t *testing.T) {
	// A table whose inner representation lacks bucket_mask is a layout
	// version this decoder does not understand.
	inner := structT("hashbrown::raw::RawTableInner", 16,
		field("items", 8, usizeT),
	)
	rawTable := structT("hashbrown::raw::RawTable<(K, V)>", 16, field("table", 0, inner))
	rawTable.TemplateArgs = []*types.Type{pairI32I32()}
	hbMap := structT("hashbrown::map::HashMap<K, V>", 16, field("table", 0, rawTable))
	outer := structT("std::collections::hash::map::HashMap<i32, i32>", 16, field("base", 0, hbMap))

	p := NewHashMap(newValue(outer, 0x100, mem.NewBuffer(0x100, make([]byte, 16))))
	err := p.Update()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != ErrUnrecognizedLayout {
		t.Fatalf("Update = %v, want unrecognized-layout", err)
	}
	if de.Field != "bucket_mask" {
		t.Fatalf("missing field = %q, want bucket_mask", de.Field)
	}
	if p.ChildCount() != 0 {
		t.Fatalf("ChildCount after failed Update = %d, want 0", p.ChildCount())
	}
	if p.Err() == nil {
		t.Fatalf("Err should keep the diagnostic")
	}
}

func TestHashMapNonPowerOfTwoMask(t *testing.T) {
	f := tableFixture{mask: 6, items: 0, ctrl: []byte{0xFF}, ctrlBase: 0x2000, pair: pairI32I32()}
	p := NewHashMap(f.value())
	err := p.Update()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != ErrUnrecognizedLayout {
		t.Fatalf("Update = %v, want unrecognized-layout for mask 6", err)
	}
}

func TestHashMapControlReadFailure(t *testing.T) {
	// Control pointer aims at unmapped memory: the read failure propagates,
	// no retry, no partial table.
	f := tableFixture{mask: 7, items: 3, ctrl: []byte{0}, ctrlBase: 0x2000, pair: pairI32I32()}
	v := f.value() // only one control byte mapped out of eight
	p := NewHashMap(v)
	err := p.Update()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != ErrRead {
		t.Fatalf("Update = %v, want read failure", err)
	}
}

func TestHashSetProjectsKey(t *testing.T) {
	f := tableFixture{
		set:      true,
		mask:     3,
		items:    2,
		ctrl:     []byte{0x80, 0, 0x80, 0},
		ctrlBase: 0x2000,
		pair:     pairI32Unit(),
	}
	p := NewHashSet(f.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := p.ChildCount(); got != 2 {
		t.Fatalf("ChildCount = %d, want 2", got)
	}
	// Occupied slots 1 and 3, pair size 4, new layout: pair addresses are
	// ctrl-8 and ctrl-16; the child is the key, not the pair.
	c, err := p.ChildAt(1)
	if err != nil {
		t.Fatalf("ChildAt(1): %v", err)
	}
	if c.Addr() != 0x2000-4*4 {
		t.Fatalf("key addr = 0x%X, want 0x%X", c.Addr(), uint64(0x2000-4*4))
	}
	if c.Type() != u32T {
		t.Fatalf("set child type = %q, want the key type", c.Type().Name)
	}
	if c.Name() != "[1]" {
		t.Fatalf("child name = %q, want [1]", c.Name())
	}
}

func TestHashMapChildAtIdempotent(t *testing.T) {
	f := tableFixture{
		mask:     7,
		items:    3,
		ctrl:     []byte{0, 0x80, 0, 0x80, 0x80, 0x80, 0, 0x80},
		ctrlBase: 0x2000,
		pair:     pairI32I32(),
	}
	p := NewHashMap(f.value())
	if err := p.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	a, err := p.ChildAt(1)
	if err != nil {
		t.Fatalf("ChildAt: %v", err)
	}
	b, err := p.ChildAt(1)
	if err != nil {
		t.Fatalf("ChildAt repeat: %v", err)
	}
	if a.Addr() != b.Addr() || a.Type() != b.Type() {
		t.Fatalf("repeated ChildAt disagrees")
	}
}
