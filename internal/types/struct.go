package types

import (
	"fmt"

	"cbgen/internal/source"
)

// FieldDecl is one field as written in source, before classification.
// Dims holds one entry per bracket group; an empty slice means no array.
type FieldDecl struct {
	Type string
	Name string
	Dims []uint32
	// DimText keeps each bracket group as written ("4", "MAX_LIGHTS").
	DimText []string
	Span    source.Span
}

// StructDecl is the scanner's record for one struct body.
type StructDecl struct {
	Name   string
	Source string
	Span   source.Span
	Fields []FieldDecl
}

// ResolutionState tracks a struct through a single generation run.
type ResolutionState uint8

const (
	Unvisited ResolutionState = iota
	InProgress
	Resolved
)

func (s ResolutionState) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("ResolutionState(%d)", s)
	}
}

// Padding is a synthetic filler placed immediately before a field.
type Padding struct {
	Offset uint32
	Size   uint32
}

// Unit is the byte width of one filler element: 4-byte words when they tile
// the gap exactly, 2-byte units otherwise.
func (p Padding) Unit() uint32 {
	if p.Size%4 == 0 {
		return 4
	}
	return 2
}

// Count is the number of filler units.
func (p Padding) Count() uint32 {
	return p.Size / p.Unit()
}

// Field is a classified field. Offset, Size, Align and Pad are written by the
// resolver exactly once and are read-only afterwards.
type Field struct {
	Name     string
	Type     FieldType
	ArrayLen uint32 // 0 means not an array
	DimText  string
	Span     source.Span

	Offset uint32
	Size   uint32
	Align  uint32
	Pad    *Padding
}

// IsArray reports whether the field was declared with a bracket group.
func (f *Field) IsArray() bool {
	return f.ArrayLen > 0
}

// End is the first byte past the field.
func (f *Field) End() uint32 {
	return f.Offset + f.Size
}

// StructDef is the registry's record for one struct.
type StructDef struct {
	Name   string
	Source string
	Span   source.Span
	Fields []Field
	// Deps lists referenced struct names in first-use order, without duplicates.
	Deps  []string
	State ResolutionState
	Size  uint32
}

// ArrayMember finds a field declared as an array, looking through non-array
// struct members with lookup. The result is a dotted path from s, e.g.
// "inner.values".
func (s *StructDef) ArrayMember(lookup func(name string) *StructDef) (string, bool) {
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.IsArray() {
			return f.Name, true
		}
		if f.Type.Kind != KindStruct || lookup == nil {
			continue
		}
		if ref := lookup(f.Type.Name); ref != nil && ref != s {
			if path, ok := ref.ArrayMember(lookup); ok {
				return f.Name + "." + path, true
			}
		}
	}
	return "", false
}

// Field returns the named field or nil.
func (s *StructDef) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
