package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.h", []byte("struct A\n{\n\tfloat x;\n};"))
	cases := []struct {
		off       uint32
		line, col uint32
	}{
		{0, 1, 1},
		{8, 1, 9}, // the newline itself
		{9, 2, 1},
		{12, 3, 2},
		{21, 4, 1},
		{23, 4, 3},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start.Line != tc.line || start.Col != tc.col {
			t.Fatalf("offset %d: got %d:%d, want %d:%d", tc.off, start.Line, start.Col, tc.line, tc.col)
		}
	}
}

func TestFileLineAndText(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.h", []byte("one\ntwo\nthree")))
	if got := f.Line(2); got != "two" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.Line(3); got != "three" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("line 4 = %q", got)
	}
	if got := f.Text(Span{Start: 4, End: 7}); got != "two" {
		t.Fatalf("text = %q", got)
	}
	if got := f.Text(Span{Start: 10, End: 100}); got != "ree" {
		t.Fatalf("clamped text = %q", got)
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.h")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if got, ok := fs.Lookup(path); !ok || got.ID != id {
		t.Fatalf("lookup by path failed")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 9}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 9 {
		t.Fatalf("cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file cover changed span: %v", got)
	}
	if !a.Cover(b).Contains(a) {
		t.Fatalf("cover must contain both spans")
	}
}
