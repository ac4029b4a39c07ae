package layout_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cbgen/internal/layout"
	"cbgen/internal/testkit"
	"cbgen/internal/types"
)

type placed struct {
	Name   string
	Offset uint32
	Size   uint32
	Align  uint32
	Pad    uint32
}

func summarize(def *types.StructDef) []placed {
	out := make([]placed, 0, len(def.Fields))
	for _, f := range def.Fields {
		p := placed{Name: f.Name, Offset: f.Offset, Size: f.Size, Align: f.Align}
		if f.Pad != nil {
			p.Pad = f.Pad.Size
		}
		out = append(out, p)
	}
	return out
}

func newRegistry(t *testing.T, decls ...types.StructDecl) *layout.Registry {
	t.Helper()
	reg := layout.NewRegistry(types.MustHandleTable(map[string]uint32{
		"PalDescriptorHandle": 4,
		"WideHandle":          8,
	}))
	for _, d := range decls {
		if _, err := reg.Declare(d); err != nil {
			t.Fatalf("declare %s: %v", d.Name, err)
		}
	}
	return reg
}

func resolveAll(t *testing.T, reg *layout.Registry) {
	t.Helper()
	if err := layout.NewResolver(reg).ResolveAll(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := testkit.CheckRegistry(reg); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func expectKind(t *testing.T, err error, kind layout.LayoutErrorKind) *layout.LayoutError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, lerr.Kind, lerr)
	}
	return lerr
}

func TestVectorsPadAcrossRegisterBoundaries(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("Vertex",
		testkit.Field("float3", "pos"),
		testkit.Field("float3", "normal"),
		testkit.Field("float2", "uv"),
	))
	resolveAll(t, reg)

	def := reg.Struct("Vertex")
	want := []placed{
		{"pos", 0, 12, 12, 0},
		{"normal", 16, 12, 12, 4},
		{"uv", 32, 8, 8, 4},
	}
	if diff := cmp.Diff(want, summarize(def)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if def.Size != 40 {
		t.Fatalf("size %d, want 40", def.Size)
	}
}

func TestScalarArrayStride(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("Weights", testkit.Field("float", "v", 3)))
	resolveAll(t, reg)

	def := reg.Struct("Weights")
	if diff := cmp.Diff([]placed{{"v", 0, 36, 16, 0}}, summarize(def)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if def.Size != 36 {
		t.Fatalf("size %d, want 36", def.Size)
	}
}

func TestNestedStructCopiesSize(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("Outer", testkit.Field("Inner", "x")),
		testkit.Struct("Inner", testkit.Field("float4", "v")),
	)
	resolveAll(t, reg)

	inner, outer := reg.Struct("Inner"), reg.Struct("Outer")
	if inner.Size != 16 || inner.Fields[0].Offset != 0 || inner.Fields[0].Size != 16 {
		t.Fatalf("unexpected Inner layout %+v", summarize(inner))
	}
	if diff := cmp.Diff([]placed{{"x", 0, 16, 16, 0}}, summarize(outer)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if outer.Size != 16 {
		t.Fatalf("size %d, want 16", outer.Size)
	}
}

func TestMutualReferenceIsCycle(t *testing.T) {
	for _, start := range []string{"A", "B"} {
		reg := newRegistry(t,
			testkit.Struct("A", testkit.Field("B", "b")),
			testkit.Struct("B", testkit.Field("A", "a")),
		)
		lerr := expectKind(t, layout.NewResolver(reg).Resolve(start), layout.ErrCyclicStructReference)
		other := map[string]string{"A": "B", "B": "A"}[start]
		if diff := cmp.Diff([]string{start, other, start}, lerr.Chain); diff != "" {
			t.Fatalf("chain mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSelfReferenceIsCycle(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("Node", testkit.Field("float", "v"), testkit.Field("Node", "next")))
	lerr := expectKind(t, layout.NewResolver(reg).ResolveAll(), layout.ErrCyclicStructReference)
	if diff := cmp.Diff([]string{"Node", "Node"}, lerr.Chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
}

func TestLongCycleReportsFullStack(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("Root", testkit.Field("A", "a")),
		testkit.Struct("A", testkit.Field("B", "b")),
		testkit.Struct("B", testkit.Field("C", "c")),
		testkit.Struct("C", testkit.Field("A", "a")),
	)
	r := layout.NewResolver(reg)
	lerr := expectKind(t, r.Resolve("Root"), layout.ErrCyclicStructReference)
	if diff := cmp.Diff([]string{"Root", "A", "B", "C", "A"}, lerr.Chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "A"}, lerr.Cycle()); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
	if got := lerr.Error(); got != "cyclic struct reference: Root -> A -> B -> C -> A" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("Light", testkit.Field("float3", "pos"), testkit.Field("float", "radius")),
		testkit.Struct("Scene",
			testkit.Field("Light", "key"),
			testkit.Field("float", "exposure"),
			testkit.Field("Light", "fill"),
		),
	)
	calls := 0
	r := layout.NewResolver(reg)
	r.OnResolved = func(*types.StructDef) { calls++ }
	if err := r.Resolve("Scene"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	first := summarize(reg.Struct("Scene"))
	if err := r.ResolveAll(); err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if err := r.Resolve("Scene"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if diff := cmp.Diff(first, summarize(reg.Struct("Scene"))); diff != "" {
		t.Fatalf("layout changed (-first +second):\n%s", diff)
	}
	if calls != 2 {
		t.Fatalf("expected each struct laid out once, got %d callbacks", calls)
	}
	want := []placed{
		{"key", 0, 16, 16, 0},
		{"exposure", 16, 4, 4, 0},
		{"fill", 32, 16, 16, 12},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if len(r.Stack()) != 0 {
		t.Fatalf("stack not empty after resolution: %v", r.Stack())
	}
}

func TestMixedWidths(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("Mixed",
		testkit.Field("float", "a"),
		testkit.Field("float2", "b"),
		testkit.Field("uint16_t", "c"),
		testkit.Field("double", "d"),
		testkit.Field("PalDescriptorHandle", "h"),
		testkit.Field("WideHandle", "w"),
		testkit.Field("float3x4", "m"),
		testkit.Field("PalDescriptorHandle", "hs", 2),
	))
	resolveAll(t, reg)

	def := reg.Struct("Mixed")
	want := []placed{
		{"a", 0, 4, 4, 0},
		{"b", 4, 8, 4, 0},
		{"c", 12, 2, 2, 0},
		{"d", 16, 8, 8, 2},
		{"h", 24, 4, 4, 0},
		{"w", 32, 8, 4, 4},
		{"m", 48, 60, 16, 8},
		{"hs", 112, 20, 16, 4},
	}
	if diff := cmp.Diff(want, summarize(def)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if def.Size != 132 {
		t.Fatalf("size %d, want 132", def.Size)
	}
	if pad := def.Field("d").Pad; pad.Unit() != 2 || pad.Count() != 1 {
		t.Fatalf("unexpected padding units %+v", *pad)
	}
}

func TestTwoWideVectorsPackAfterScalars(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("P",
		testkit.Field("float", "a"),
		testkit.Field("float2", "b"),
		testkit.Field("int2", "c"),
		testkit.Field("uint2", "d"),
		testkit.Field("bool2", "e"),
	))
	resolveAll(t, reg)

	want := []placed{
		{"a", 0, 4, 4, 0},
		{"b", 4, 8, 4, 0},
		{"c", 16, 8, 4, 4},
		{"d", 24, 8, 4, 0},
		{"e", 32, 8, 4, 0},
	}
	if diff := cmp.Diff(want, summarize(reg.Struct("P"))); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if size := reg.Struct("P").Size; size != 40 {
		t.Fatalf("size %d, want 40", size)
	}
}

func TestArrayOfStructs(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("Light", testkit.Field("float3", "pos"), testkit.Field("float", "radius")),
		testkit.Struct("Lights", testkit.Field("uint", "count"), testkit.Field("Light", "items", 4)),
	)
	resolveAll(t, reg)
	want := []placed{
		{"count", 0, 4, 4, 0},
		{"items", 16, 64, 16, 12},
	}
	if diff := cmp.Diff(want, summarize(reg.Struct("Lights"))); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFieldType(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("S", testkit.Field("float5", "v")))
	lerr := expectKind(t, layout.NewResolver(reg).ResolveAll(), layout.ErrUnknownType)
	if lerr.Struct != "S" || lerr.Field != "v" || lerr.Type != "float5" {
		t.Fatalf("unexpected error fields %+v", lerr)
	}
}

func TestResolveUnregisteredName(t *testing.T) {
	reg := newRegistry(t)
	expectKind(t, layout.NewResolver(reg).Resolve("Missing"), layout.ErrUnresolvedStructReference)
}

func TestDuplicateStructName(t *testing.T) {
	reg := newRegistry(t, testkit.Struct("S", testkit.Field("float", "a")))
	dup := testkit.Struct("S", testkit.Field("int", "b"))
	dup.Source = "other.h"
	_, err := reg.Declare(dup)
	expectKind(t, err, layout.ErrDuplicateStructName)
	if reg.Len() != 1 || reg.Struct("S").Fields[0].Name != "a" {
		t.Fatalf("duplicate must not replace the first declaration")
	}
}

func TestUnsupportedConstructs(t *testing.T) {
	cases := []struct {
		name string
		decl types.StructDecl
	}{
		{"multi-dimensional", testkit.Struct("S", testkit.Field("float", "v", 2, 2))},
		{"mismatched sizes", testkit.Struct("S", testkit.Field("float", "v", 2, 3))},
		{"zero length", testkit.Struct("S", testkit.Field("float", "v", 0))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := layout.NewRegistry(nil)
			_, err := reg.Declare(tc.decl)
			expectKind(t, err, layout.ErrUnsupportedConstruct)
		})
	}

	reg := newRegistry(t,
		testkit.Struct("Inner", testkit.Field("float", "w", 4)),
		testkit.Struct("Outer", testkit.Field("Inner", "items", 2)),
	)
	lerr := expectKind(t, layout.NewResolver(reg).ResolveAll(), layout.ErrUnsupportedConstruct)
	if lerr.Struct != "Outer" || lerr.Field != "items" {
		t.Fatalf("unexpected error fields %+v", lerr)
	}
}

func TestArrayOfStructWithNestedArrayMember(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("Inner", testkit.Field("float4", "v", 2)),
		testkit.Struct("Mid", testkit.Field("Inner", "i")),
		testkit.Struct("Outer", testkit.Field("Mid", "m", 2)),
	)
	lerr := expectKind(t, layout.NewResolver(reg).ResolveAll(), layout.ErrUnsupportedConstruct)
	if lerr.Struct != "Outer" || lerr.Field != "m" {
		t.Fatalf("unexpected error fields %+v", lerr)
	}
	if want := "array of struct Mid whose member i.v is an array"; lerr.Detail != want {
		t.Fatalf("detail %q, want %q", lerr.Detail, want)
	}

	// A single nested struct with an array member stays legal.
	ok := newRegistry(t,
		testkit.Struct("Inner", testkit.Field("float4", "v", 2)),
		testkit.Struct("Mid", testkit.Field("Inner", "i")),
		testkit.Struct("Outer", testkit.Field("Mid", "m")),
	)
	resolveAll(t, ok)
	if size := ok.Struct("Outer").Size; size != 32 {
		t.Fatalf("size %d, want 32", size)
	}
}

func TestFailedResolveLeavesResolverClean(t *testing.T) {
	reg := newRegistry(t,
		testkit.Struct("A", testkit.Field("B", "b")),
		testkit.Struct("B", testkit.Field("Nope", "x")),
	)
	r := layout.NewResolver(reg)
	for i := range 2 {
		lerr := expectKind(t, r.Resolve("A"), layout.ErrUnknownType)
		if lerr.Struct != "B" || lerr.Type != "Nope" {
			t.Fatalf("attempt %d: unexpected error fields %+v", i, lerr)
		}
		if len(r.Stack()) != 0 {
			t.Fatalf("attempt %d: stack not empty: %v", i, r.Stack())
		}
		for _, name := range []string{"A", "B"} {
			if st := reg.Struct(name).State; st != types.Unvisited {
				t.Fatalf("attempt %d: %s left in state %s", i, name, st)
			}
		}
	}
}

func TestStructNameShadowingHandleIsRejected(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Declare(testkit.Struct("WideHandle", testkit.Field("float", "a")))
	lerr := expectKind(t, err, layout.ErrUnsupportedConstruct)
	if lerr.Struct != "WideHandle" {
		t.Fatalf("unexpected error fields %+v", lerr)
	}
	if reg.Len() != 0 {
		t.Fatalf("shadowing struct was registered")
	}
	if got := reg.Lookup("WideHandle"); got.Kind != layout.FoundHandle || got.HandleSize != 8 {
		t.Fatalf("lookup = %+v, want the handle", got)
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	reg := layout.NewRegistry(types.MustHandleTable(types.DefaultHandles))
	decls := []types.StructDecl{
		{Name: "B1", Source: "b.h"},
		{Name: "A1", Source: "a.h"},
		{Name: "B2", Source: "b.h"},
		{Name: "A2", Source: "a.h"},
	}
	for _, d := range decls {
		if _, err := reg.Declare(d); err != nil {
			t.Fatalf("declare: %v", err)
		}
	}
	var names []string
	for _, def := range reg.All() {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"B1", "B2", "A1", "A2"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b.h", "a.h"}, reg.Sources()); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}

	if res := reg.Lookup("A2"); res.Kind != layout.FoundStruct || res.Struct.Name != "A2" {
		t.Fatalf("unexpected lookup %+v", res)
	}
	if res := reg.Lookup("PalDescriptorHandle"); res.Kind != layout.FoundHandle || res.HandleSize != 4 {
		t.Fatalf("unexpected lookup %+v", res)
	}
	if res := reg.Lookup("nope"); res.Kind != layout.NotFound {
		t.Fatalf("unexpected lookup %+v", res)
	}
}

func TestBuildCollectsDependencies(t *testing.T) {
	def, err := layout.Build(testkit.Struct("S",
		testkit.Field("Light", "a"),
		testkit.Field("float", "b"),
		testkit.Field("Light", "c"),
		testkit.Field("Material", "d"),
		testkit.Field("PalDescriptorHandle", "e"),
	), types.MustHandleTable(types.DefaultHandles))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"Light", "Material"}, def.Deps); diff != "" {
		t.Fatalf("deps mismatch (-want +got):\n%s", diff)
	}
	if def.State != types.Unvisited {
		t.Fatalf("new struct must be unvisited, got %s", def.State)
	}
}
