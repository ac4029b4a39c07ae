package token

import "cbgen/internal/source"

// Token is a single significant token with the trivia that precedes it.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

// Is reports whether t has any of the kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}
