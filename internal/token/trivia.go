package token

import (
	"fmt"

	"cbgen/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	default:
		return fmt.Sprintf("TriviaKind(%d)", k)
	}
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
