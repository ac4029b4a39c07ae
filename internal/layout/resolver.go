package layout

import (
	"math"
	"slices"

	"cbgen/internal/types"
)

// Resolver assigns offsets, sizes and padding to every field of the structs in
// a Registry. Struct state lives in the StructDef records; the resolver only
// keeps the active stack so a cycle can be reported as a chain.
type Resolver struct {
	reg   *Registry
	stack []string

	// OnResolved, if set, is called once per struct right after it is laid out.
	OnResolved func(def *types.StructDef)
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve lays out the named struct and everything it contains. Resolving a
// struct that is already Resolved is a no-op.
func (r *Resolver) Resolve(name string) error {
	def := r.reg.Struct(name)
	if def == nil {
		return &LayoutError{Kind: ErrUnresolvedStructReference, Struct: name}
	}
	return r.resolve(def)
}

// ResolveAll resolves every registered struct in declaration order and stops
// at the first error.
func (r *Resolver) ResolveAll() error {
	for _, def := range r.reg.All() {
		if err := r.resolve(def); err != nil {
			return err
		}
	}
	return nil
}

// Stack returns a copy of the active resolution stack.
func (r *Resolver) Stack() []string {
	return slices.Clone(r.stack)
}

func (r *Resolver) resolve(def *types.StructDef) error {
	switch def.State {
	case types.Resolved:
		return nil
	case types.InProgress:
		chain := append(slices.Clone(r.stack), def.Name)
		return &LayoutError{
			Kind:   ErrCyclicStructReference,
			Struct: def.Name,
			Chain:  chain,
			Span:   def.Span,
		}
	}

	def.State = types.InProgress
	r.stack = append(r.stack, def.Name)

	err := r.resolveDeps(def)
	if err == nil {
		err = r.place(def)
	}
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		// A failed struct may be retried once its inputs are fixed.
		def.State = types.Unvisited
		return err
	}
	def.State = types.Resolved
	if r.OnResolved != nil {
		r.OnResolved(def)
	}
	return nil
}

func (r *Resolver) resolveDeps(def *types.StructDef) error {
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Type.Kind != types.KindStruct {
			continue
		}
		ref := r.reg.Struct(f.Type.Name)
		if ref == nil {
			return &LayoutError{
				Kind:   ErrUnknownType,
				Struct: def.Name,
				Field:  f.Name,
				Type:   f.Type.Name,
				Span:   f.Span,
			}
		}
		if err := r.resolve(ref); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) place(def *types.StructDef) error {
	var cursor uint32
	for i := range def.Fields {
		f := &def.Fields[i]
		var refSize uint32
		if f.Type.Kind == types.KindStruct {
			ref := r.reg.Struct(f.Type.Name)
			if f.IsArray() {
				if member, ok := ref.ArrayMember(r.reg.Struct); ok {
					return &LayoutError{
						Kind:   ErrUnsupportedConstruct,
						Struct: def.Name,
						Field:  f.Name,
						Detail: "array of struct " + ref.Name + " whose member " + member + " is an array",
						Span:   f.Span,
					}
				}
			}
			refSize = ref.Size
		}
		size, align, err := Measure(f.Type, f.ArrayLen, refSize)
		if err != nil {
			return &LayoutError{
				Kind:   ErrUnsupportedConstruct,
				Struct: def.Name,
				Field:  f.Name,
				Detail: "field too large",
				Span:   f.Span,
				Err:    err,
			}
		}
		if uint64(cursor)+RegisterSize+uint64(size) > math.MaxUint32 {
			return &LayoutError{
				Kind:   ErrUnsupportedConstruct,
				Struct: def.Name,
				Field:  f.Name,
				Detail: "struct too large",
				Span:   f.Span,
			}
		}
		offset, pad := Place(cursor, size, align)
		f.Offset, f.Size, f.Align, f.Pad = offset, size, align, pad
		cursor = offset + size
	}
	def.Size = cursor
	return nil
}
