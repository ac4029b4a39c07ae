package types

import "strings"

// Classify decides the FieldType of a type token once. Builtin spellings win,
// then the handle table; anything else is assumed to name a struct whose
// existence is checked when layouts are resolved.
func Classify(tok string, handles *HandleTable) FieldType {
	if ft, ok := ParseBuiltin(tok); ok {
		return ft
	}
	if handles != nil {
		if size, ok := handles.Lookup(tok); ok {
			return MakeHandle(tok, size)
		}
	}
	return MakeStructRef(tok)
}

// ParseBuiltin recognizes (float|int|uint|bool|uint16_t|double){cols}?(x{rows})?
// with both dimensions in 1..4. The whole token must match.
func ParseBuiltin(tok string) (FieldType, bool) {
	for _, k := range scalarKeywords {
		kw := k.Keyword()
		if !strings.HasPrefix(tok, kw) {
			continue
		}
		rest := tok[len(kw):]
		if rest == "" {
			return MakeScalar(k), true
		}
		cols, ok := dimAt(rest, 0)
		if !ok {
			return FieldType{}, false
		}
		rest = rest[1:]
		if rest == "" {
			return MakeVector(k, cols), true
		}
		if len(rest) != 2 || rest[0] != 'x' {
			return FieldType{}, false
		}
		rows, ok := dimAt(rest, 1)
		if !ok {
			return FieldType{}, false
		}
		return MakeMatrix(k, cols, rows), true
	}
	return FieldType{}, false
}

func dimAt(s string, i int) (uint8, bool) {
	if i >= len(s) {
		return 0, false
	}
	c := s[i]
	if c < '1' || c > '0'+MaxDim {
		return 0, false
	}
	return c - '0', true
}
