package types

import "fmt"

// ScalarKind enumerates the element kinds a constant buffer can hold.
type ScalarKind uint8

const (
	ScalarInvalid ScalarKind = iota
	ScalarFloat
	ScalarInt
	ScalarUint
	ScalarBool
	ScalarUint16
	ScalarDouble
)

// Width returns the element width in bytes.
func (k ScalarKind) Width() uint32 {
	switch k {
	case ScalarFloat, ScalarInt, ScalarUint, ScalarBool:
		return 4
	case ScalarUint16:
		return 2
	case ScalarDouble:
		return 8
	default:
		return 0
	}
}

// Keyword is the spelling used in source text.
func (k ScalarKind) Keyword() string {
	switch k {
	case ScalarFloat:
		return "float"
	case ScalarInt:
		return "int"
	case ScalarUint:
		return "uint"
	case ScalarBool:
		return "bool"
	case ScalarUint16:
		return "uint16_t"
	case ScalarDouble:
		return "double"
	default:
		return ""
	}
}

func (k ScalarKind) String() string {
	if kw := k.Keyword(); kw != "" {
		return kw
	}
	return fmt.Sprintf("ScalarKind(%d)", k)
}

// scalarKeywords is ordered longest-prefix first so that "uint16_t" wins over
// "uint" and "int".
var scalarKeywords = [...]ScalarKind{
	ScalarUint16,
	ScalarDouble,
	ScalarFloat,
	ScalarUint,
	ScalarBool,
	ScalarInt,
}

// ShapeKind describes how many elements a builtin carries.
type ShapeKind uint8

const (
	ShapeScalar ShapeKind = iota
	ShapeVector
	ShapeMatrix
)

func (s ShapeKind) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeVector:
		return "vector"
	case ShapeMatrix:
		return "matrix"
	default:
		return fmt.Sprintf("ShapeKind(%d)", s)
	}
}

// MaxDim bounds vector columns and matrix rows.
const MaxDim = 4
