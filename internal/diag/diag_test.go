package diag

import (
	"testing"

	"cbgen/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.Add("/work/shaders/a.h", []byte("struct A\n{\n};\n"), 0)
	b := fs.Add("/work/shaders/b.h", []byte("x\n"), 0)

	diags := []Diagnostic{
		NewError(SynExpectSemicolon, source.Span{File: b, Start: 0, End: 1}, "expected ';'"),
		NewError(LayDuplicateStruct, source.Span{File: a, Start: 7, End: 8}, "struct \"A\" is declared\nmore than once").
			WithNote(source.Span{File: b, Start: 1, End: 1}, "first declared here"),
		New(SevWarning, LayCyclicStruct, source.Span{File: a, Start: 9, End: 10}, "late"),
	}

	want := "error LAY3002 shaders/a.h:1:8 struct \"A\" is declared more than once\n" +
		"warning LAY3004 shaders/a.h:2:1 late\n" +
		"error SYN2005 shaders/b.h:1:1 expected ';'\n" +
		"note LAY3002 shaders/b.h:1:2 first declared here"
	if got := FormatShort(diags, fs, "/work", true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFormatShortWithoutLocation(t *testing.T) {
	fs := source.NewFileSet()
	fs.Add("/work/a.h", []byte("struct A {};\n"), 0)
	d := NewError(ProjNoInputs, source.Span{}, "no input headers found")
	if got, want := FormatShort([]Diagnostic{d}, fs, "/work", false), "error PRJ5004 no input headers found"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(SynUnexpectedToken, source.Span{File: 0, Start: 5}, "b")) {
		t.Fatal("first add rejected")
	}
	bag.Add(New(SevWarning, SynUnexpectedToken, source.Span{File: 0, Start: 1}, "a"))
	if bag.Add(NewError(SynUnexpectedToken, source.Span{}, "c")) {
		t.Fatal("limit not enforced")
	}
	if bag.Dropped() != 1 {
		t.Fatalf("dropped = %d", bag.Dropped())
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Message != "a" || items[1].Message != "b" {
		t.Fatalf("unexpected order %+v", items)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("severity queries wrong")
	}
	if d, ok := bag.FirstError(); !ok || d.Message != "b" {
		t.Fatalf("first error = %+v", d)
	}
}

func TestDedup(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		ReportError(r, LexUnknownChar, source.Span{Start: 1, End: 2}, "unknown character '$'").Emit()
	}
	ReportError(r, LexUnknownChar, source.Span{Start: 3, End: 4}, "unknown character '$'").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}

	bag.Add(bag.Items()[0])
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Dedup kept %d", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:          "LEX1001",
		SynExpectSemicolon:      "SYN2005",
		LayUnsupportedConstruct: "LAY3005",
		IOWriteFailed:           "IO4002",
		ProjBadHandle:           "PRJ5002",
		UnknownCode:             "E0000",
	}
	for code, want := range cases {
		if code.ID() != want {
			t.Fatalf("%d: ID %s, want %s", code, code.ID(), want)
		}
		if code.Title() == "" {
			t.Fatalf("%s has no title", want)
		}
	}
}
