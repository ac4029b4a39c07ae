package lexer_test

import (
	"testing"

	"cbgen/internal/diag"
	"cbgen/internal/lexer"
	"cbgen/internal/source"
	"cbgen/internal/token"
)

func lexAll(t *testing.T, input string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.h", []byte(input)))
	bag := diag.NewBag(0)
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestStructTokens(t *testing.T) {
	toks, bag := lexAll(t, "struct Light {\n\tfloat3 pos; // world\n\tfloat radius[MAX];\n};\n")
	want := []token.Kind{
		token.KwStruct, token.Ident, token.LBrace,
		token.Ident, token.Ident, token.Semicolon,
		token.Ident, token.Ident, token.LBracket, token.Ident, token.RBracket, token.Semicolon,
		token.RBrace, token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (%v)", i, got[i], want[i], got)
		}
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	// the comment is trivia of the token after it
	radiusType := toks[6]
	foundComment := false
	for _, tr := range radiusType.Leading {
		if tr.Kind == token.TriviaLineComment && tr.Text == "// world" {
			foundComment = true
		}
	}
	if !foundComment {
		t.Fatalf("comment not attached: %+v", radiusType.Leading)
	}
}

func TestDirectives(t *testing.T) {
	toks, _ := lexAll(t, "#pragma once\n  #define N \\\n  4\nint a; x # y\n")
	if toks[0].Kind != token.Directive || toks[0].Text != "#pragma once" {
		t.Fatalf("first token %+v", toks[0])
	}
	if toks[1].Kind != token.Directive || toks[1].Text != "#define N \\\n  4" {
		t.Fatalf("continued directive %+v", toks[1])
	}
	// '#' in the middle of a line is plain punctuation
	var hash token.Token
	for _, tok := range toks {
		if tok.Text == "#" {
			hash = tok
		}
	}
	if hash.Kind != token.Other {
		t.Fatalf("mid-line '#' lexed as %s", hash.Kind)
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		in   string
		kind token.Kind
	}{
		{"42", token.IntLit},
		{"0x1F", token.IntLit},
		{"16u", token.IntLit},
		{"010", token.IntLit},
		{"1.5f", token.FloatLit},
		{".25", token.FloatLit},
		{"1e-3", token.FloatLit},
		{"12abc", token.Invalid},
	}
	for _, tc := range cases {
		toks, bag := lexAll(t, tc.in)
		if toks[0].Kind != tc.kind || toks[0].Text != tc.in {
			t.Fatalf("%q: got %s %q", tc.in, toks[0].Kind, toks[0].Text)
		}
		if (tc.kind == token.Invalid) != bag.HasErrors() {
			t.Fatalf("%q: diagnostics %+v", tc.in, bag.Items())
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := map[string]uint64{"0": 0, "7": 7, "0x10": 16, "0b101": 5, "017": 15, "8ul": 8}
	for in, want := range cases {
		got, ok := lexer.ParseInt(in)
		if !ok || got != want {
			t.Fatalf("ParseInt(%q) = %d, %v", in, got, ok)
		}
	}
	for _, in := range []string{"", "0x", "abc", "1.0", "9q"} {
		if _, ok := lexer.ParseInt(in); ok {
			t.Fatalf("ParseInt(%q) accepted", in)
		}
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		in   string
		code diag.Code
	}{
		{"/* open", diag.LexUnterminatedBlockComment},
		{"\"abc\nx", diag.LexUnterminatedString},
		{"a \x01 b", diag.LexUnknownChar},
		{"§", diag.LexUnknownChar},
	}
	for _, tc := range cases {
		_, bag := lexAll(t, tc.in)
		items := bag.Items()
		if len(items) == 0 || items[0].Code != tc.code {
			t.Fatalf("%q: got %+v, want %s", tc.in, items, tc.code.ID())
		}
	}
}

func TestUnicodeIdentifiersAreNormalized(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	toks, bag := lexAll(t, "cafe\u0301 x")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %+v", bag.Items())
	}
	if toks[0].Kind != token.Ident || toks[0].Text != "caf\u00e9" {
		t.Fatalf("got %s %q", toks[0].Kind, toks[0].Text)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	lx := lexer.New(fs.Get(fs.AddVirtual("p.h", []byte("a b"))), lexer.Options{})
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("next = %q", n.Text)
	}
	for range 2 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("expected EOF, got %s", n.Kind)
		}
	}
}
