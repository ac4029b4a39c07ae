package testkit

import (
	"fmt"

	"cbgen/internal/layout"
	"cbgen/internal/types"
)

// CheckLayout runs the layout invariants on a resolved struct:
// 1) offsets are non-decreasing and fields do not overlap
// 2) the last field ends exactly at the struct size
// 3) register-aligned fields start on a register boundary
// 4) plain scalars and vectors up to a register wide never straddle one
// 5) padding exactly closes the gap to the next field
func CheckLayout(def *types.StructDef) error {
	if def == nil {
		return fmt.Errorf("nil struct")
	}
	if def.State != types.Resolved {
		return fmt.Errorf("%s: state is %s", def.Name, def.State)
	}
	var cursor uint32
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Offset < cursor {
			return fmt.Errorf("%s.%s: offset %d overlaps previous field ending at %d", def.Name, f.Name, f.Offset, cursor)
		}
		if f.Pad != nil {
			if f.Pad.Offset != cursor || f.Pad.Offset+f.Pad.Size != f.Offset {
				return fmt.Errorf("%s.%s: padding %+v does not close [%d,%d)", def.Name, f.Name, *f.Pad, cursor, f.Offset)
			}
		} else if f.Offset != cursor {
			return fmt.Errorf("%s.%s: gap [%d,%d) without padding", def.Name, f.Name, cursor, f.Offset)
		}
		if f.Align >= layout.RegisterSize && f.Offset%layout.RegisterSize != 0 {
			return fmt.Errorf("%s.%s: aligned field at offset %d", def.Name, f.Name, f.Offset)
		}
		if f.Type.Kind == types.KindBuiltin && !f.IsArray() && !f.Type.IsMatrix() && f.Size <= layout.RegisterSize {
			if f.Offset%layout.RegisterSize+f.Size > layout.RegisterSize {
				return fmt.Errorf("%s.%s: straddles a register boundary at offset %d size %d", def.Name, f.Name, f.Offset, f.Size)
			}
		}
		cursor = f.End()
	}
	if cursor != def.Size {
		return fmt.Errorf("%s: fields end at %d but size is %d", def.Name, cursor, def.Size)
	}
	return nil
}

// CheckRegistry runs CheckLayout on every struct of reg.
func CheckRegistry(reg *layout.Registry) error {
	for _, def := range reg.All() {
		if err := CheckLayout(def); err != nil {
			return err
		}
	}
	return nil
}

// Field is a shorthand for a scanned field without source positions.
func Field(typ, name string, dims ...uint32) types.FieldDecl {
	return types.FieldDecl{Type: typ, Name: name, Dims: dims}
}

// Struct is a shorthand for a scanned struct from source "test.h".
func Struct(name string, fields ...types.FieldDecl) types.StructDecl {
	return types.StructDecl{Name: name, Source: "test.h", Fields: fields}
}
