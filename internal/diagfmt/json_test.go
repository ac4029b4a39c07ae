package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cbgen/internal/diag"
	"cbgen/internal/emit"
	"cbgen/internal/layout"
	"cbgen/internal/lexer"
	"cbgen/internal/source"
	"cbgen/internal/types"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	content := []byte("struct A { B b; };\nstruct B { A a; };\n")
	fileID := fs.AddVirtual("cycle.h", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.LayCyclicStruct, source.Span{File: fileID, Start: 11, End: 15}, "cyclic struct reference: A -> B -> A")
	d = d.WithNote(source.Span{File: fileID, Start: 11, End: 15}, "A contains B")
	d = d.WithNote(source.Span{File: fileID, Start: 30, End: 34}, "B contains A")
	bag.Add(d)
	bag.Add(diag.New(diag.SevWarning, diag.ProjNoInputs, source.Span{}, "no headers under shaders/"))
	return bag, fs
}

func TestJSONBasic(t *testing.T) {
	bag, fs := sampleBag()

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	want := DiagnosticsOutput{
		Count: 2,
		Diagnostics: []DiagnosticJSON{
			{
				Severity: "ERROR",
				Code:     "LAY3004",
				Title:    "Cyclic struct reference",
				Message:  "cyclic struct reference: A -> B -> A",
				Location: &LocationJSON{File: "cycle.h", StartByte: 11, EndByte: 15, StartLine: 1, StartCol: 12, EndLine: 1, EndCol: 16},
				Notes: []NoteJSON{
					{Message: "A contains B", Location: &LocationJSON{File: "cycle.h", StartByte: 11, EndByte: 15, StartLine: 1, StartCol: 12, EndLine: 1, EndCol: 16}},
					{Message: "B contains A", Location: &LocationJSON{File: "cycle.h", StartByte: 30, EndByte: 34, StartLine: 2, StartCol: 12, EndLine: 2, EndCol: 16}},
				},
			},
			{
				Severity: "WARNING",
				Code:     "PRJ5004",
				Title:    "No input headers found",
				Message:  "no headers under shaders/",
			},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	bag, fs := sampleBag()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d, want 1/1", out.Count, out.Dropped)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatal("notes must be omitted unless requested")
	}
	if loc := out.Diagnostics[0].Location; loc == nil || loc.StartLine != 0 {
		t.Fatalf("positions must be omitted unless requested: %+v", loc)
	}
}

func TestSarif(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "cbgen", ToolVersion: "0.1.0", InvocationArgs: []string{"gen", "shaders"}})
	if err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header: %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 2 || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("results=%d rules=%d", len(run.Results), len(run.Tool.Driver.Rules))
	}
	first := run.Results[0]
	if first.RuleID != "LAY3004" || first.Level != "error" || len(first.RelatedLocations) != 2 {
		t.Fatalf("first result = %+v", first)
	}
	if got := first.Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "cycle.h" {
		t.Fatalf("uri = %q", got)
	}
	if len(run.Results[1].Locations) != 0 {
		t.Fatal("location-less diagnostic must not get a location")
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatal("run with errors reported successful")
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.h", []byte("// c\nstruct A;")))
	lx := lexer.New(file, lexer.Options{})
	tokens := lx.All()

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, tokens, fs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(pretty.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("pretty tokens = %d lines:\n%s", len(lines), pretty.String())
	}
	if !strings.Contains(lines[0], `"struct"`) || !strings.Contains(lines[0], "at 2:1-2:7") || !strings.Contains(lines[0], "leading:") {
		t.Fatalf("first token line = %q", lines[0])
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, tokens); err != nil {
		t.Fatal(err)
	}
	var decoded []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 4 || decoded[1].Text != "A" {
		t.Fatalf("json tokens = %+v", decoded)
	}
}

func resolved(t *testing.T) (*layout.Registry, []*types.StructDef) {
	t.Helper()
	reg := layout.NewRegistry(nil)
	decls := []types.StructDecl{
		{Name: "Inner", Source: "a.h", Fields: []types.FieldDecl{{Type: "float3", Name: "a"}, {Type: "float", Name: "b"}}},
		{Name: "Outer", Source: "a.h", Fields: []types.FieldDecl{
			{Type: "float", Name: "x"},
			{Type: "Inner", Name: "inner"},
			{Type: "float4", Name: "v", Dims: []uint32{2}, DimText: []string{"2"}},
		}},
	}
	for _, d := range decls {
		if _, err := reg.Declare(d); err != nil {
			t.Fatal(err)
		}
	}
	if err := layout.NewResolver(reg).ResolveAll(); err != nil {
		t.Fatal(err)
	}
	return reg, reg.All()
}

func TestLayoutPretty(t *testing.T) {
	_, defs := resolved(t)
	var buf bytes.Buffer
	if err := LayoutPretty(&buf, defs, LayoutOpts{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"struct Outer (a.h, 64 bytes)",
		"_pad4",
		"hlsl_int3",
		"InnerCB",
		"float4[2]",
		"hlsl_varray_cb<hlsl_float, 4, 2>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("layout report missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutJSON(t *testing.T) {
	reg, defs := resolved(t)
	report := BuildLayoutJSON(defs, LayoutOpts{}, func(def *types.StructDef) []emit.Alias { return emit.Flatten(reg, def) })

	var buf bytes.Buffer
	if err := LayoutJSON(&buf, report); err != nil {
		t.Fatal(err)
	}
	var decoded []StructLayoutJSON
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(report, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	outer := decoded[1]
	inner := outer.Fields[1]
	if inner.Offset != 16 || inner.Pad == nil || inner.Pad.Size != 12 || inner.Pad.Unit != 4 {
		t.Fatalf("inner field = %+v", inner)
	}
	if len(outer.Aliases) != 4 || outer.Aliases[1].Path != "inner.a" {
		t.Fatalf("aliases = %+v", outer.Aliases)
	}
}
