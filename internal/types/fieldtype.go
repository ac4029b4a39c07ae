package types

import (
	"fmt"
	"strconv"
)

// TypeKind tags the FieldType union.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota
	KindBuiltin
	KindHandle
	KindStruct
)

func (k TypeKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBuiltin:
		return "builtin"
	case KindHandle:
		return "handle"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("TypeKind(%d)", k)
	}
}

// FieldType is a compact descriptor for a classified field type. Only the
// members relevant to Kind are meaningful:
//
//	KindBuiltin: Scalar, Shape, Cols, Rows
//	KindHandle:  Name, Size
//	KindStruct:  Name
type FieldType struct {
	Kind   TypeKind
	Scalar ScalarKind
	Shape  ShapeKind
	Cols   uint8
	Rows   uint8
	Name   string
	Size   uint32
}

// MakeScalar describes a single element of kind k.
func MakeScalar(k ScalarKind) FieldType {
	return FieldType{Kind: KindBuiltin, Scalar: k, Shape: ShapeScalar, Cols: 1, Rows: 1}
}

// MakeVector describes kN.
func MakeVector(k ScalarKind, cols uint8) FieldType {
	return FieldType{Kind: KindBuiltin, Scalar: k, Shape: ShapeVector, Cols: cols, Rows: 1}
}

// MakeMatrix describes kCxR: rows row-vectors of cols elements each.
func MakeMatrix(k ScalarKind, cols, rows uint8) FieldType {
	return FieldType{Kind: KindBuiltin, Scalar: k, Shape: ShapeMatrix, Cols: cols, Rows: rows}
}

// MakeHandle describes an opaque handle of a fixed byte size.
func MakeHandle(name string, size uint32) FieldType {
	return FieldType{Kind: KindHandle, Name: name, Size: size}
}

// MakeStructRef describes a reference to a struct declared elsewhere.
func MakeStructRef(name string) FieldType {
	return FieldType{Kind: KindStruct, Name: name}
}

// RowSize is the byte size of one row: cols*width for builtins.
// For matrices this is the size of a single row vector.
func (t FieldType) RowSize() uint32 {
	if t.Kind != KindBuiltin {
		return 0
	}
	return uint32(t.Cols) * t.Scalar.Width()
}

// IsMatrix reports whether t is a builtin matrix.
func (t FieldType) IsMatrix() bool {
	return t.Kind == KindBuiltin && t.Shape == ShapeMatrix
}

// Token renders t back into the source spelling.
func (t FieldType) Token() string {
	switch t.Kind {
	case KindBuiltin:
		switch t.Shape {
		case ShapeVector:
			return t.Scalar.Keyword() + strconv.Itoa(int(t.Cols))
		case ShapeMatrix:
			return t.Scalar.Keyword() + strconv.Itoa(int(t.Cols)) + "x" + strconv.Itoa(int(t.Rows))
		default:
			return t.Scalar.Keyword()
		}
	case KindHandle, KindStruct:
		return t.Name
	default:
		return "<invalid>"
	}
}

func (t FieldType) String() string {
	return t.Token()
}
