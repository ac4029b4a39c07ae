package token

import (
	"strings"
	"testing"
)

func TestLookupPunct(t *testing.T) {
	cases := map[byte]Kind{
		'{': LBrace,
		']': RBracket,
		';': Semicolon,
		'$': Other,
		'+': Other,
	}
	for b, want := range cases {
		if got := LookupPunct(b); got != want {
			t.Fatalf("%q: got %s, want %s", b, got, want)
		}
		if !want.IsPunct() {
			t.Fatalf("%s should be punctuation", want)
		}
	}
}

func TestKeywordsAndNames(t *testing.T) {
	if k, ok := LookupKeyword("struct"); !ok || k != KwStruct {
		t.Fatalf("struct keyword not found")
	}
	if _, ok := LookupKeyword("float3"); ok {
		t.Fatalf("builtin types must stay identifiers")
	}
	for k := Invalid; k <= Other; k++ {
		if strings.HasPrefix(k.String(), "Kind(") {
			t.Fatalf("kind %d has no name", k)
		}
	}
	if Ident.IsPunct() || EOF.IsPunct() {
		t.Fatalf("non-punctuation reported as punctuation")
	}
}
