package parser

import (
	"strconv"

	"cbgen/internal/diag"
	"cbgen/internal/source"
	"cbgen/internal/token"
)

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

// advance consumes the next token and remembers its span.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// expect consumes a token of kind k or reports code at the best position.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.lx.Peek().Span
	if p.at(token.EOF) {
		sp = p.after(p.lastSpan)
	}
	p.err(code, sp, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.errors++
	if p.opts.MaxErrors > 0 && p.errors > p.opts.MaxErrors {
		return
	}
	p.reporter.Report(code, diag.SevError, sp, msg, nil)
}

func (p *Parser) warn(code diag.Code, sp source.Span, msg string) {
	p.reporter.Report(code, diag.SevWarning, sp, msg, nil)
}

// after is the empty span right behind sp.
func (p *Parser) after(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier " + strconv.Quote(tok.Text)
	case token.Directive:
		return "preprocessor directive"
	default:
		return strconv.Quote(tok.Text)
	}
}
