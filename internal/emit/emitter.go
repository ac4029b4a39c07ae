package emit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cbgen/internal/layout"
	"cbgen/internal/parser"
	"cbgen/internal/source"
	"cbgen/internal/types"
)

// Options controls what File writes around each struct.
type Options struct {
	// Aliases appends a comment table of every CB member by absolute offset.
	Aliases bool
	// StaticAsserts follows each CB struct with a sizeof check.
	StaticAsserts bool
	// Rewrite maps a quoted #include path of includer to its generated name.
	// A nil Rewrite leaves includes untouched.
	Rewrite func(includer, path string) (string, bool)
	// Banner prepends a "Code generated ... DO NOT EDIT." line.
	Banner bool
}

// Emitter renders scanned headers against a resolved registry.
type Emitter struct {
	reg  *layout.Registry
	opts Options
}

// New returns an emitter over reg. Every struct File renders must already be
// resolved in reg.
func New(reg *layout.Registry, opts Options) *Emitter {
	return &Emitter{reg: reg, opts: opts}
}

// edit replaces span of the input with text.
type edit struct {
	span source.Span
	text string
}

// File produces the generated header for res. Text outside struct bodies is
// copied verbatim; each struct becomes a host mirror plus its CB variant.
func (e *Emitter) File(res *parser.Result) ([]byte, error) {
	file := res.File
	edits := make([]edit, 0, len(res.Structs)+len(res.Includes))
	for i := range res.Structs {
		decl := &res.Structs[i]
		def := e.reg.Struct(decl.Name)
		if def == nil || def.Source != decl.Source {
			return nil, fmt.Errorf("emit %s: struct %s is not registered", file.Path, decl.Name)
		}
		if def.State != types.Resolved {
			return nil, fmt.Errorf("emit %s: struct %s is %s", file.Path, decl.Name, def.State)
		}
		var b strings.Builder
		e.writeStruct(&b, def)
		edits = append(edits, edit{span: decl.Span, text: b.String()})
	}
	if e.opts.Rewrite != nil {
		for _, inc := range res.Includes {
			if inc.System {
				continue
			}
			if insideAny(inc.PathSpan, res.Structs) {
				continue
			}
			if to, ok := e.opts.Rewrite(file.Path, inc.Path); ok {
				edits = append(edits, edit{span: inc.PathSpan, text: to})
			}
		}
	}
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].span.Start < edits[j].span.Start
	})

	var out strings.Builder
	out.Grow(len(file.Content) * 3)
	if e.opts.Banner {
		fmt.Fprintf(&out, "// Code generated by cbgen from %s. DO NOT EDIT.\n\n", file.BaseName())
	}
	pos := uint32(0)
	for _, ed := range edits {
		out.Write(file.Content[pos:ed.span.Start])
		out.WriteString(ed.text)
		pos = ed.span.End
	}
	out.Write(file.Content[pos:])
	return []byte(out.String()), nil
}

func insideAny(sp source.Span, decls []types.StructDecl) bool {
	for i := range decls {
		if decls[i].Span.Contains(sp) {
			return true
		}
	}
	return false
}

func (e *Emitter) writeStruct(b *strings.Builder, def *types.StructDef) {
	b.WriteString("//plain struct\n")
	fmt.Fprintf(b, "struct %s\n{\n", def.Name)
	for i := range def.Fields {
		f := &def.Fields[i]
		name := f.Name
		if f.IsArray() {
			name += "[" + extent(f) + "]"
		}
		writeMember(b, HostType(f.Type), name+";", "")
	}
	b.WriteString("};\n\n")

	cb := CBName(def.Name)
	b.WriteString("//const buffer struct\n")
	fmt.Fprintf(b, "struct %s\n{\n", cb)
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Pad != nil {
			typ, name := PadDecl(f.Pad)
			writeMember(b, typ, name+";", offsetComment(f.Pad.Offset))
		}
		writeMember(b, CBType(f), f.Name+";", offsetComment(f.Offset))
	}
	b.WriteString("};")
	if e.opts.StaticAsserts {
		fmt.Fprintf(b, "\nstatic_assert(sizeof(%s) == %d, \"%s layout mismatch\");", cb, def.Size, cb)
	}
	if e.opts.Aliases {
		e.writeAliases(b, def)
	}
}

func writeMember(b *strings.Builder, typ, decl, comment string) {
	b.WriteByte('\t')
	b.WriteString(typ)
	for n := len(typ); n < typeColumn; n++ {
		b.WriteByte(' ')
	}
	b.WriteByte(' ')
	b.WriteString(decl)
	if comment != "" {
		b.WriteByte(' ')
		b.WriteString(comment)
	}
	b.WriteByte('\n')
}

func offsetComment(off uint32) string {
	return "//" + strconv.FormatUint(uint64(off), 10)
}

func (e *Emitter) writeAliases(b *strings.Builder, def *types.StructDef) {
	aliases := Flatten(e.reg, def)
	fmt.Fprintf(b, "\n// %s members by absolute offset", CBName(def.Name))
	width := 0
	for _, a := range aliases {
		width = max(width, len(a.Path))
	}
	for _, a := range aliases {
		fmt.Fprintf(b, "\n//   %-*s %5d %5d", width, a.Path, a.Offset, a.Size)
	}
}
