package layout

import (
	"fmt"
	"strings"

	"cbgen/internal/source"
)

// LayoutErrorKind enumerates fatal layout conditions.
type LayoutErrorKind uint8

const (
	// ErrUnknownType: a field type is neither builtin, handle nor a declared struct.
	ErrUnknownType LayoutErrorKind = iota + 1
	ErrDuplicateStructName
	// ErrUnresolvedStructReference: a struct was requested by name but never registered.
	ErrUnresolvedStructReference
	ErrCyclicStructReference
	ErrUnsupportedConstruct
)

func (k LayoutErrorKind) String() string {
	switch k {
	case ErrUnknownType:
		return "UnknownType"
	case ErrDuplicateStructName:
		return "DuplicateStructName"
	case ErrUnresolvedStructReference:
		return "UnresolvedStructReference"
	case ErrCyclicStructReference:
		return "CyclicStructReference"
	case ErrUnsupportedConstruct:
		return "UnsupportedConstruct"
	default:
		return fmt.Sprintf("LayoutErrorKind(%d)", k)
	}
}

// LayoutError is returned for every condition that aborts a generation run.
type LayoutError struct {
	Kind   LayoutErrorKind
	Struct string
	Field  string
	Type   string
	Chain  []string    // for ErrCyclicStructReference: active stack plus the revisited name
	Detail string      // for ErrUnsupportedConstruct
	Span   source.Span // primary location, may be empty for synthetic input
	Prev   source.Span // for ErrDuplicateStructName: first declaration
	Err    error
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnknownType:
		return fmt.Sprintf("unknown type %q for field %s.%s", e.Type, e.Struct, e.Field)
	case ErrDuplicateStructName:
		return fmt.Sprintf("struct %q is declared more than once", e.Struct)
	case ErrUnresolvedStructReference:
		return fmt.Sprintf("struct %q is not registered", e.Struct)
	case ErrCyclicStructReference:
		if len(e.Chain) == 0 {
			return fmt.Sprintf("cyclic struct reference through %q", e.Struct)
		}
		return fmt.Sprintf("cyclic struct reference: %s", strings.Join(e.Chain, " -> "))
	case ErrUnsupportedConstruct:
		where := e.Struct
		if e.Field != "" {
			where += "." + e.Field
		}
		if e.Err != nil {
			return fmt.Sprintf("unsupported construct in %s: %s: %v", where, e.Detail, e.Err)
		}
		return fmt.Sprintf("unsupported construct in %s: %s", where, e.Detail)
	default:
		return fmt.Sprintf("layout error kind=%d struct=%q", e.Kind, e.Struct)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Cycle trims Chain to the part that actually loops.
func (e *LayoutError) Cycle() []string {
	if e == nil || len(e.Chain) == 0 {
		return nil
	}
	last := e.Chain[len(e.Chain)-1]
	for i, name := range e.Chain[:len(e.Chain)-1] {
		if name == last {
			return e.Chain[i:]
		}
	}
	return e.Chain
}
