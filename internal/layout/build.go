package layout

import (
	"fmt"
	"slices"

	"cbgen/internal/types"
)

// Build turns a scanned declaration into an unresolved StructDef. Field types
// are classified here, once; array shapes the generator cannot express are
// rejected.
func Build(decl types.StructDecl, handles *types.HandleTable) (*types.StructDef, error) {
	def := &types.StructDef{
		Name:   decl.Name,
		Source: decl.Source,
		Span:   decl.Span,
		Fields: make([]types.Field, 0, len(decl.Fields)),
	}
	for _, fd := range decl.Fields {
		n, err := arrayLength(decl.Name, fd)
		if err != nil {
			return nil, err
		}
		ft := types.Classify(fd.Type, handles)
		f := types.Field{
			Name:     fd.Name,
			Type:     ft,
			ArrayLen: n,
			Span:     fd.Span,
		}
		if len(fd.DimText) > 0 {
			f.DimText = fd.DimText[0]
		}
		def.Fields = append(def.Fields, f)
		if ft.Kind == types.KindStruct && !slices.Contains(def.Deps, ft.Name) {
			def.Deps = append(def.Deps, ft.Name)
		}
	}
	return def, nil
}

func arrayLength(structName string, fd types.FieldDecl) (uint32, error) {
	switch len(fd.Dims) {
	case 0:
		return 0, nil
	case 1:
		if fd.Dims[0] == 0 {
			return 0, &LayoutError{
				Kind:   ErrUnsupportedConstruct,
				Struct: structName,
				Field:  fd.Name,
				Detail: "zero-length array",
				Span:   fd.Span,
			}
		}
		return fd.Dims[0], nil
	}
	detail := "multi-dimensional array"
	for _, d := range fd.Dims[1:] {
		if d != fd.Dims[0] {
			detail = fmt.Sprintf("mismatched array sizes %v", fd.Dims)
			break
		}
	}
	return 0, &LayoutError{
		Kind:   ErrUnsupportedConstruct,
		Struct: structName,
		Field:  fd.Name,
		Detail: detail,
		Span:   fd.Span,
	}
}
