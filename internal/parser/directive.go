package parser

import (
	"strings"

	"fortio.org/safecast"

	"cbgen/internal/diag"
	"cbgen/internal/lexer"
	"cbgen/internal/source"
	"cbgen/internal/token"
)

// parseDirective records integer #defines and #includes. Other directives
// (#pragma, #if, ...) are passed through untouched.
func (p *Parser) parseDirective(tok token.Token) {
	body := strings.TrimLeft(tok.Text[1:], " \t")
	offset := len(tok.Text) - len(body)
	word, rest := splitWord(body)
	offset += len(word)
	switch word {
	case "define":
		p.parseDefine(tok, rest)
	case "include":
		p.parseInclude(tok, rest, offset)
	}
}

func (p *Parser) parseDefine(tok token.Token, rest string) {
	rest = stripComments(strings.ReplaceAll(rest, "\\\n", " "))
	name, value := splitWord(strings.TrimSpace(rest))
	if name == "" {
		p.warn(diag.SynBadDirective, tok.Span, "#define without a name")
		return
	}
	if strings.ContainsRune(name, '(') {
		return // function-like macro
	}
	value = strings.TrimSpace(value)
	for len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')' {
		value = strings.TrimSpace(value[1 : len(value)-1])
	}
	v, ok := lexer.ParseInt(value)
	if !ok {
		return
	}
	p.res.Defines = append(p.res.Defines, Define{Name: name, Value: v, Span: tok.Span})
}

func (p *Parser) parseInclude(tok token.Token, rest string, offset int) {
	trimmed := strings.TrimLeft(rest, " \t")
	offset += len(rest) - len(trimmed)
	if trimmed == "" {
		p.warn(diag.SynBadDirective, tok.Span, "#include without a path")
		return
	}
	var closer byte
	switch trimmed[0] {
	case '"':
		closer = '"'
	case '<':
		closer = '>'
	default:
		p.warn(diag.SynBadDirective, tok.Span, "#include path must be quoted")
		return
	}
	end := strings.IndexByte(trimmed[1:], closer)
	if end < 0 {
		p.warn(diag.SynBadDirective, tok.Span, "unterminated #include path")
		return
	}
	start, err := safecast.Conv[uint32](offset + 1)
	if err != nil {
		return
	}
	n, err := safecast.Conv[uint32](end)
	if err != nil {
		return
	}
	p.res.Includes = append(p.res.Includes, Include{
		Path: trimmed[1 : 1+end],
		PathSpan: source.Span{
			File:  tok.Span.File,
			Start: tok.Span.Start + start,
			End:   tok.Span.Start + start + n,
		},
		System: closer == '>',
	})
}

func splitWord(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func stripComments(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	for {
		i := strings.Index(s, "/*")
		if i < 0 {
			return s
		}
		j := strings.Index(s[i+2:], "*/")
		if j < 0 {
			return s[:i]
		}
		s = s[:i] + " " + s[i+2+j+2:]
	}
}
