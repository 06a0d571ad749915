package snapshot

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"memlens/internal/types"
)

// The TOML manifest is the human-authored snapshot form, used for fixtures
// and small captures. Types reference each other by name; memory bytes are
// hex strings.
//
//	[[types]]
//	name = "usize"
//	kind = "scalar"
//	size = 8
//
//	[[regions]]
//	base = 0x1000
//	data = "0a000000 14000000"
//
//	[[roots]]
//	name = "v"
//	type = "alloc::vec::Vec<u32>"
//	addr = 0x500

type manifest struct {
	Types   []manifestType   `toml:"types"`
	Regions []manifestRegion `toml:"regions"`
	Roots   []manifestRoot   `toml:"roots"`
}

type manifestType struct {
	Name         string          `toml:"name"`
	Kind         string          `toml:"kind"`
	Size         int             `toml:"size"`
	Elem         string          `toml:"elem"`
	TemplateArgs []string        `toml:"template_args"`
	Fields       []manifestField `toml:"fields"`
}

type manifestField struct {
	Name   string `toml:"name"`
	Offset uint64 `toml:"offset"`
	Type   string `toml:"type"`
}

type manifestRegion struct {
	Base uint64 `toml:"base"`
	Data string `toml:"data"`
}

type manifestRoot struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Addr uint64 `toml:"addr"`
}

// LoadManifest parses a TOML manifest into a Snapshot.
func LoadManifest(path string) (*Snapshot, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	s, err := m.compile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func parseKind(s string) (types.Kind, error) {
	switch s {
	case "scalar":
		return types.KindScalar, nil
	case "struct":
		return types.KindStruct, nil
	case "pointer":
		return types.KindPointer, nil
	case "typedef":
		return types.KindTypedef, nil
	default:
		return types.KindInvalid, fmt.Errorf("unknown type kind %q", s)
	}
}

func (m *manifest) compile() (*Snapshot, error) {
	index := make(map[string]int32, len(m.Types))
	for i, t := range m.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("types[%d]: missing name", i)
		}
		if _, dup := index[t.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", t.Name)
		}
		index[t.Name] = int32(i)
	}
	ref := func(name string) (int32, error) {
		if name == "" {
			return NoType, nil
		}
		i, ok := index[name]
		if !ok {
			return NoType, fmt.Errorf("unknown type %q", name)
		}
		return i, nil
	}

	s := &Snapshot{Schema: SchemaVersion}
	for _, t := range m.Types {
		kind, err := parseKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
		rec := TypeRec{Name: t.Name, Kind: uint8(kind), Size: t.Size}
		if rec.Elem, err = ref(t.Elem); err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
		for _, arg := range t.TemplateArgs {
			r, err := ref(arg)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", t.Name, err)
			}
			rec.TemplateArgs = append(rec.TemplateArgs, r)
		}
		for _, f := range t.Fields {
			r, err := ref(f.Type)
			if err != nil {
				return nil, fmt.Errorf("type %q, field %q: %w", t.Name, f.Name, err)
			}
			rec.Fields = append(rec.Fields, FieldRec{Name: f.Name, Offset: f.Offset, Type: r})
		}
		s.Types = append(s.Types, rec)
	}

	for i, r := range m.Regions {
		data, err := decodeHex(r.Data)
		if err != nil {
			return nil, fmt.Errorf("regions[%d]: %w", i, err)
		}
		s.Regions = append(s.Regions, Region{Base: r.Base, Data: data})
	}

	for _, r := range m.Roots {
		ti, err := ref(r.Type)
		if err != nil || ti == NoType {
			return nil, fmt.Errorf("root %q: unknown type %q", r.Name, r.Type)
		}
		s.Roots = append(s.Roots, Root{Name: r.Name, Type: ti, Addr: r.Addr})
	}
	return s, nil
}

// decodeHex accepts hex byte strings with optional whitespace between bytes.
func decodeHex(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' {
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("bad hex data: %w", err)
	}
	return data, nil
}
