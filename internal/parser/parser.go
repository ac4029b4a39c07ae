package parser

import (
	"cbgen/internal/diag"
	"cbgen/internal/lexer"
	"cbgen/internal/source"
	"cbgen/internal/token"
	"cbgen/internal/types"
)

type Options struct {
	MaxErrors      uint // 0 means unlimited
	MaxTokenLength uint32
}

// Parser scans one header for struct declarations, #define constants and
// #include lines. Everything else is skipped; it is copied through verbatim
// by the emitter.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	reporter diag.Reporter
	opts     Options
	errors   uint
	lastSpan source.Span
	res      *Result
}

// ParseFile scans file and reports problems into bag.
func ParseFile(file *source.File, bag *diag.Bag, opts Options) *Result {
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	p := &Parser{
		file:     file,
		reporter: reporter,
		opts:     opts,
		res:      &Result{File: file, Bag: bag},
	}
	p.lx = lexer.New(file, lexer.Options{Reporter: reporter, MaxTokenLength: opts.MaxTokenLength})
	p.parseItems()
	return p.res
}

func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.Directive:
			p.parseDirective(p.advance())
		case token.KwTypedef:
			p.skipTypedef()
		case token.KwStruct:
			p.parseStruct()
		default:
			p.advance()
		}
	}
}

// skipTypedef consumes a typedef up to its ';' at brace depth 0. typedef'd
// struct bodies are not generated.
func (p *Parser) skipTypedef() {
	p.advance()
	depth := 0
	for !p.at(token.EOF) {
		tok := p.advance()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth > 0 {
				depth--
			}
		case token.Semicolon:
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) parseStruct() {
	kw := p.advance()
	if !p.at(token.Ident) {
		// anonymous or malformed; leave it to the C++ compiler
		return
	}
	name := p.advance()
	switch {
	case p.at(token.Semicolon):
		p.advance() // forward declaration
		return
	case !p.at(token.LBrace):
		// "struct Foo* ptr;" and similar uses in passthrough code
		return
	}
	lbrace := p.advance()

	decl := types.StructDecl{
		Name:   name.Text,
		Source: p.file.Path,
		Span:   kw.Span,
	}
	seen := make(map[string]source.Span, 8)
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.RBrace:
			rbrace := p.advance()
			end := rbrace.Span
			if p.at(token.Semicolon) {
				end = p.advance().Span
			} else {
				p.err(diag.SynExpectSemicolon, p.after(rbrace.Span), "expected ';' after struct "+decl.Name)
			}
			decl.Span = kw.Span.Cover(end)
			p.res.Structs = append(p.res.Structs, decl)
			return
		case token.EOF:
			diag.ReportError(p.reporter, diag.SynUnclosedBrace, lbrace.Span, "struct "+decl.Name+" is not closed").
				WithNote(name.Span, "struct declared here").
				Emit()
			p.errors++
			return
		case token.Directive:
			p.parseDirective(p.advance())
		case token.KwStruct:
			p.err(diag.SynNestedStruct, tok.Span, "nested struct definitions are not supported; declare the struct at top level")
			p.skipNested()
		case token.Ident:
			p.parseFields(&decl, seen)
		default:
			p.err(diag.SynUnexpectedToken, tok.Span, "unexpected "+describe(tok)+" in struct body")
			p.resyncField()
		}
	}
}

// parseFields handles `Type name[dim]..., name2 ...;`.
func (p *Parser) parseFields(decl *types.StructDecl, seen map[string]source.Span) {
	typ := p.advance()
	for {
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name after "+typ.Text)
		if !ok {
			p.resyncField()
			return
		}
		fd := types.FieldDecl{
			Type: typ.Text,
			Name: nameTok.Text,
			Span: typ.Span.Cover(nameTok.Span),
		}
		for p.at(token.LBracket) {
			text, end, ok := p.parseDim()
			if !ok {
				p.resyncField()
				return
			}
			fd.DimText = append(fd.DimText, text)
			fd.Span = fd.Span.Cover(end)
		}
		if prev, dup := seen[fd.Name]; dup {
			diag.ReportError(p.reporter, diag.SynDuplicateField, nameTok.Span, "duplicate field "+fd.Name+" in struct "+decl.Name).
				WithNote(prev, "previous declaration").
				Emit()
			p.errors++
		} else {
			seen[fd.Name] = nameTok.Span
			decl.Fields = append(decl.Fields, fd)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field"); !ok {
		p.resyncField()
	}
}

func (p *Parser) parseDim() (string, source.Span, bool) {
	lb := p.advance()
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.Ident:
		p.advance()
	case token.RBracket:
		p.err(diag.SynBadArrayLength, lb.Span.Cover(tok.Span), "array length is required")
		p.advance()
		return "", tok.Span, false
	default:
		p.err(diag.SynBadArrayLength, tok.Span, "array length must be an integer or a #define name")
		return "", tok.Span, false
	}
	rb, ok := p.expect(token.RBracket, diag.SynExpectRightBracket, "expected ']' after array length")
	if !ok {
		return "", tok.Span, false
	}
	return tok.Text, rb.Span, true
}

// resyncField skips to the end of the current field: past ';', or up to '}'.
func (p *Parser) resyncField() {
	for {
		switch p.lx.Peek().Kind {
		case token.EOF, token.RBrace:
			return
		case token.Semicolon:
			p.advance()
			return
		}
		p.advance()
	}
}

// skipNested consumes a nested `struct X { ... } name;`.
func (p *Parser) skipNested() {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.advance()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.Semicolon:
			if depth <= 0 {
				return
			}
		}
	}
}
