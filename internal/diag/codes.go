package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005

	// struct scanning
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectIdentifier   Code = 2002
	SynExpectLBrace       Code = 2003
	SynUnclosedBrace      Code = 2004
	SynExpectSemicolon    Code = 2005
	SynExpectRightBracket Code = 2006
	SynBadArrayLength     Code = 2007
	SynUnknownArrayLength Code = 2008
	SynDuplicateField     Code = 2009
	SynBadDirective       Code = 2010
	SynNestedStruct       Code = 2011

	// layout
	LayInfo                 Code = 3000
	LayUnknownType          Code = 3001
	LayDuplicateStruct      Code = 3002
	LayUnresolvedStruct     Code = 3003
	LayCyclicStruct         Code = 3004
	LayUnsupportedConstruct Code = 3005

	// io
	IOInfo        Code = 4000
	IOLoadFailed  Code = 4001
	IOWriteFailed Code = 4002

	// project
	ProjInfo            Code = 5000
	ProjManifestInvalid Code = 5001
	ProjBadHandle       Code = 5002
	ProjDuplicateDefine Code = 5003
	ProjNoInputs        Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Invalid number literal",
	LexTokenTooLong:             "Token too long",

	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectLBrace:       "Expected '{' after struct name",
	SynUnclosedBrace:      "Unclosed struct body",
	SynExpectSemicolon:    "Expected ';'",
	SynExpectRightBracket: "Expected ']'",
	SynBadArrayLength:     "Invalid array length",
	SynUnknownArrayLength: "Unknown array length constant",
	SynDuplicateField:     "Duplicate field name",
	SynBadDirective:       "Malformed preprocessor directive",
	SynNestedStruct:       "Nested struct definitions are not supported",

	LayInfo:                 "Layout information",
	LayUnknownType:          "Unknown field type",
	LayDuplicateStruct:      "Duplicate struct name",
	LayUnresolvedStruct:     "Unresolved struct reference",
	LayCyclicStruct:         "Cyclic struct reference",
	LayUnsupportedConstruct: "Unsupported construct",

	IOInfo:        "I/O information",
	IOLoadFailed:  "Failed to read input",
	IOWriteFailed: "Failed to write output",

	ProjInfo:            "Project information",
	ProjManifestInvalid: "Invalid cbgen.toml",
	ProjBadHandle:       "Invalid handle type",
	ProjDuplicateDefine: "Conflicting #define",
	ProjNoInputs:        "No input headers found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
