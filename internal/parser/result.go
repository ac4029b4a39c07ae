package parser

import (
	"cbgen/internal/diag"
	"cbgen/internal/source"
	"cbgen/internal/types"
)

// Define is an integer-valued #define.
type Define struct {
	Name  string
	Value uint64
	Span  source.Span
}

// Include is a quoted or angle-bracket #include. PathSpan covers the path
// text between the delimiters so it can be rewritten in place.
type Include struct {
	Path     string
	PathSpan source.Span
	System   bool
}

// Result is everything the scanner extracted from one header.
type Result struct {
	File     *source.File
	Structs  []types.StructDecl
	Defines  []Define
	Includes []Include
	Bag      *diag.Bag
}

// Struct returns the named declaration or nil.
func (r *Result) Struct(name string) *types.StructDecl {
	for i := range r.Structs {
		if r.Structs[i].Name == name {
			return &r.Structs[i]
		}
	}
	return nil
}
