package lexer

import (
	"strconv"
	"strings"

	"cbgen/internal/diag"
	"cbgen/internal/token"
)

// scanNumber consumes a pp-number: digits, letters, '_', '.', and a sign after
// an exponent. Plain integers (with optional u/l suffixes) become IntLit,
// anything else numeric becomes FloatLit.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isIdentContinueByte(b) || b == '.' {
			lx.cursor.Bump()
			continue
		}
		if (b == '+' || b == '-') && lx.cursor.Off > uint32(start) {
			prev := lx.file.Content[lx.cursor.Off-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				lx.cursor.Bump()
				continue
			}
		}
		break
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if _, ok := ParseInt(text); ok {
		return token.Token{Kind: token.IntLit, Span: sp, Text: text}
	}
	if isFloatLiteral(text) {
		return token.Token{Kind: token.FloatLit, Span: sp, Text: text}
	}
	lx.errLex(diag.LexBadNumber, sp, "invalid number literal "+strconv.Quote(text))
	return token.Token{Kind: token.Invalid, Span: sp, Text: text}
}

// ParseInt parses a C integer literal: decimal, 0x hex, 0b binary or leading-0
// octal, with optional u/U/l/L suffixes.
func ParseInt(text string) (uint64, bool) {
	body := strings.TrimRight(text, "uUlL")
	if body == "" || len(text)-len(body) > 3 {
		return 0, false
	}
	base := 10
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base, body = 16, body[2:]
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		base, body = 2, body[2:]
	case len(body) > 1 && body[0] == '0':
		base, body = 8, body[1:]
	}
	if body == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isFloatLiteral(text string) bool {
	body := strings.TrimRight(text, "fFlLhH")
	if body == "" {
		return false
	}
	_, err := strconv.ParseFloat(body, 64)
	return err == nil
}

// scanString consumes a "..." or '...' literal on one line.
func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	closed := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		if b == '\\' {
			if lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			continue
		}
		if b == quote {
			closed = true
			break
		}
	}
	sp := lx.cursor.SpanFrom(start)
	if !closed {
		lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	}
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
}

// scanDirective consumes a preprocessor line, following backslash-newline
// continuations. A trailing // comment stays part of the directive text.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Directive, Span: sp, Text: lx.text(sp)}
}
