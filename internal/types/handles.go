package types

import (
	"fmt"
	"slices"
)

// HandleTable maps opaque handle type names to their byte size.
// It is immutable once built.
type HandleTable struct {
	sizes map[string]uint32
	names []string
}

// DefaultHandles lists the handle types known without a manifest.
var DefaultHandles = map[string]uint32{
	"PalDescriptorHandle": 4,
}

// NewHandleTable validates sizes and builds a table. Every size must be a
// positive multiple of 4 and no name may shadow a builtin spelling.
func NewHandleTable(sizes map[string]uint32) (*HandleTable, error) {
	t := &HandleTable{
		sizes: make(map[string]uint32, len(sizes)),
		names: make([]string, 0, len(sizes)),
	}
	for name, size := range sizes {
		if name == "" {
			return nil, fmt.Errorf("handle type with empty name")
		}
		if _, ok := ParseBuiltin(name); ok {
			return nil, fmt.Errorf("handle type %q shadows a builtin type", name)
		}
		if size == 0 || size%4 != 0 {
			return nil, fmt.Errorf("handle type %q: size %d is not a positive multiple of 4", name, size)
		}
		t.sizes[name] = size
		t.names = append(t.names, name)
	}
	slices.Sort(t.names)
	return t, nil
}

// MustHandleTable is NewHandleTable for static tables.
func MustHandleTable(sizes map[string]uint32) *HandleTable {
	t, err := NewHandleTable(sizes)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the byte size of a handle type.
func (t *HandleTable) Lookup(name string) (uint32, bool) {
	if t == nil {
		return 0, false
	}
	size, ok := t.sizes[name]
	return size, ok
}

// Names returns handle names in sorted order.
func (t *HandleTable) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.names)
}

func (t *HandleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Merge returns a new table containing t's entries overridden by extra.
func (t *HandleTable) Merge(extra map[string]uint32) (*HandleTable, error) {
	all := make(map[string]uint32, t.Len()+len(extra))
	if t != nil {
		for name, size := range t.sizes {
			all[name] = size
		}
	}
	for name, size := range extra {
		all[name] = size
	}
	return NewHandleTable(all)
}
