package layout

import (
	"fmt"
	"slices"

	"cbgen/internal/types"
)

// LookupKind says what a name refers to.
type LookupKind uint8

const (
	NotFound LookupKind = iota
	FoundStruct
	FoundHandle
)

// LookupResult is what Registry.Lookup knows about a name.
type LookupResult struct {
	Kind       LookupKind
	Struct     *types.StructDef
	HandleSize uint32
}

// Registry holds every struct of one generation run together with the handle
// table. All sources must be registered before any struct is resolved.
type Registry struct {
	handles  *types.HandleTable
	byName   map[string]*types.StructDef
	sources  []string
	bySource map[string][]*types.StructDef
	count    int
}

// NewRegistry creates an empty registry. A nil table means no handle types.
func NewRegistry(handles *types.HandleTable) *Registry {
	return &Registry{
		handles:  handles,
		byName:   make(map[string]*types.StructDef, 64),
		bySource: make(map[string][]*types.StructDef, 8),
	}
}

// Handles exposes the handle table used for classification.
func (r *Registry) Handles() *types.HandleTable {
	if r == nil {
		return nil
	}
	return r.handles
}

// Declare classifies a scanned struct and registers it.
func (r *Registry) Declare(decl types.StructDecl) (*types.StructDef, error) {
	def, err := Build(decl, r.Handles())
	if err != nil {
		return nil, err
	}
	if err := r.Register(def); err != nil {
		return nil, err
	}
	return def, nil
}

// Register adds def. A second struct with the same name is fatal, and so is
// a struct named like a handle type.
func (r *Registry) Register(def *types.StructDef) error {
	if def == nil {
		return fmt.Errorf("register: nil struct")
	}
	if _, ok := r.handles.Lookup(def.Name); ok {
		return &LayoutError{
			Kind:   ErrUnsupportedConstruct,
			Struct: def.Name,
			Detail: "struct name shadows handle type " + def.Name,
			Span:   def.Span,
		}
	}
	if prev, ok := r.byName[def.Name]; ok {
		return &LayoutError{
			Kind:   ErrDuplicateStructName,
			Struct: def.Name,
			Span:   def.Span,
			Prev:   prev.Span,
		}
	}
	r.byName[def.Name] = def
	if _, seen := r.bySource[def.Source]; !seen {
		r.sources = append(r.sources, def.Source)
	}
	r.bySource[def.Source] = append(r.bySource[def.Source], def)
	r.count++
	return nil
}

// Lookup resolves a name against handle types first, then structs, the same
// order types.Classify uses.
func (r *Registry) Lookup(name string) LookupResult {
	if r == nil {
		return LookupResult{}
	}
	if size, ok := r.handles.Lookup(name); ok {
		return LookupResult{Kind: FoundHandle, HandleSize: size}
	}
	if def, ok := r.byName[name]; ok {
		return LookupResult{Kind: FoundStruct, Struct: def}
	}
	return LookupResult{}
}

// Struct returns the named struct or nil.
func (r *Registry) Struct(name string) *types.StructDef {
	if r == nil {
		return nil
	}
	return r.byName[name]
}

// All lists structs source by source, in the order sources were first seen,
// each source in declaration order.
func (r *Registry) All() []*types.StructDef {
	if r == nil {
		return nil
	}
	out := make([]*types.StructDef, 0, r.count)
	for _, src := range r.sources {
		out = append(out, r.bySource[src]...)
	}
	return out
}

// Source lists the structs declared in one source.
func (r *Registry) Source(path string) []*types.StructDef {
	if r == nil {
		return nil
	}
	return slices.Clone(r.bySource[path])
}

// Sources lists source paths in first-registration order.
func (r *Registry) Sources() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.sources)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.count
}
