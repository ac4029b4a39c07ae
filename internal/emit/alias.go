package emit

import (
	"cbgen/internal/layout"
	"cbgen/internal/types"
)

// Alias is one leaf member of a flattened layout.
type Alias struct {
	Path   string `json:"path"`
	Type   string `json:"type"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

// Flatten lists the members of def with absolute offsets, descending into
// non-array struct references. Array members stay as a single entry.
func Flatten(reg *layout.Registry, def *types.StructDef) []Alias {
	var out []Alias
	flatten(reg, def, "", 0, &out)
	return out
}

func flatten(reg *layout.Registry, def *types.StructDef, prefix string, base uint32, out *[]Alias) {
	for i := range def.Fields {
		f := &def.Fields[i]
		path := prefix + f.Name
		if f.Type.Kind == types.KindStruct && !f.IsArray() {
			if ref := reg.Struct(f.Type.Name); ref != nil && ref.State == types.Resolved {
				flatten(reg, ref, path+".", base+f.Offset, out)
				continue
			}
		}
		*out = append(*out, Alias{
			Path:   path,
			Type:   CBType(f),
			Offset: base + f.Offset,
			Size:   f.Size,
		})
	}
}
