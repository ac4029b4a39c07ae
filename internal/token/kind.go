package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	FloatLit
	StringLit

	// keywords
	KwStruct
	KwTypedef

	// Directive is a whole preprocessor line starting with '#'.
	Directive

	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	LParen    // (
	RParen    // )
	Semicolon // ;
	Comma     // ,
	Colon     // :
	Star      // *
	Amp       // &
	Lt        // <
	Gt        // >
	Assign    // =
	Other     // any other punctuation, kept verbatim
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	FloatLit:  "FloatLit",
	StringLit: "StringLit",
	KwStruct:  "KwStruct",
	KwTypedef: "KwTypedef",
	Directive: "Directive",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	LBracket:  "LBracket",
	RBracket:  "RBracket",
	LParen:    "LParen",
	RParen:    "RParen",
	Semicolon: "Semicolon",
	Comma:     "Comma",
	Colon:     "Colon",
	Star:      "Star",
	Amp:       "Amp",
	Lt:        "Lt",
	Gt:        "Gt",
	Assign:    "Assign",
	Other:     "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

func (k Kind) IsEOF() bool { return k == EOF }

// IsPunct reports whether k is single-byte punctuation.
func (k Kind) IsPunct() bool {
	return k >= LBrace && k <= Other
}

var punct = map[byte]Kind{
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
	'(': LParen,
	')': RParen,
	';': Semicolon,
	',': Comma,
	':': Colon,
	'*': Star,
	'&': Amp,
	'<': Lt,
	'>': Gt,
	'=': Assign,
}

// LookupPunct maps a punctuation byte to its kind, Other if unknown.
func LookupPunct(b byte) Kind {
	if k, ok := punct[b]; ok {
		return k
	}
	return Other
}
