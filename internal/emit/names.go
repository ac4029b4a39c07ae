package emit

import (
	"fmt"
	"strconv"

	"cbgen/internal/types"
)

const (
	// hostPrefix marks builtin types in both generated structs.
	hostPrefix = "hlsl_"
	// cbSuffix names the constant-buffer variant: Light becomes LightCB.
	cbSuffix = "CB"
	// typeColumn is the width the member type is padded to.
	typeColumn = 30
)

// HostType is the spelling of ft in the plain mirror struct.
func HostType(ft types.FieldType) string {
	switch ft.Kind {
	case types.KindBuiltin:
		return hostPrefix + ft.Token()
	default:
		return ft.Name
	}
}

// CBName is the name of the constant-buffer variant of a struct.
func CBName(name string) string {
	return name + cbSuffix
}

// CBType is the spelling of f in the constant-buffer struct. Array extents are
// folded into the type so every element gets its register stride.
func CBType(f *types.Field) string {
	ft := f.Type
	n := extent(f)
	switch ft.Kind {
	case types.KindBuiltin:
		base := hostPrefix + ft.Scalar.Keyword()
		switch {
		case ft.IsMatrix() && f.IsArray():
			return fmt.Sprintf("hlsl_marray_cb<%s, %d, %d, %s>", base, ft.Cols, ft.Rows, n)
		case ft.IsMatrix():
			return fmt.Sprintf("%s%dx%d_cb", base, ft.Cols, ft.Rows)
		case f.IsArray():
			return fmt.Sprintf("hlsl_varray_cb<%s, %d, %s>", base, ft.Cols, n)
		default:
			return hostPrefix + ft.Token()
		}
	case types.KindHandle:
		if f.IsArray() {
			return fmt.Sprintf("hlsl_any_array_cb<%s, %s>", ft.Name, n)
		}
		return ft.Name
	case types.KindStruct:
		if f.IsArray() {
			return fmt.Sprintf("hlsl_any_array_cb<%s, %s>", CBName(ft.Name), n)
		}
		return CBName(ft.Name)
	default:
		return "/* invalid */ int"
	}
}

// extent keeps symbolic lengths so the generated header follows its #defines.
func extent(f *types.Field) string {
	if f.DimText != "" {
		return f.DimText
	}
	return strconv.FormatUint(uint64(f.ArrayLen), 10)
}

// PadDecl renders the filler declaration for p: a scalar, a vector of up to
// four units, or an array beyond that.
func PadDecl(p *types.Padding) (typ, name string) {
	base := hostPrefix + types.ScalarInt.Keyword()
	if p.Unit() == 2 {
		base = hostPrefix + types.ScalarUint16.Keyword()
	}
	name = "_pad" + strconv.FormatUint(uint64(p.Offset), 10)
	switch n := p.Count(); {
	case n == 1:
		return base, name
	case n <= types.MaxDim:
		return base + strconv.FormatUint(uint64(n), 10), name
	default:
		return base, name + "[" + strconv.FormatUint(uint64(n), 10) + "]"
	}
}
