package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cbgen/internal/emit"
	"cbgen/internal/types"
)

// LayoutOpts configures the `cbgen layout` report.
type LayoutOpts struct {
	Color bool
	// Source paths are shown relative to BaseDir when possible.
	BaseDir string
}

type layoutRow struct {
	offset, size, align string
	name, typ, cb      string
	pad                bool
}

// LayoutPretty prints one table per resolved struct with offsets, sizes,
// alignment and the padding inserted before each field.
func LayoutPretty(w io.Writer, defs []*types.StructDef, opts LayoutOpts) error {
	title := color.New(color.Bold)
	dim := color.New(color.Faint)
	if opts.Color {
		title.EnableColor()
		dim.EnableColor()
	} else {
		title.DisableColor()
		dim.DisableColor()
	}

	var b strings.Builder
	for i, def := range defs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s\n", title.Sprintf("struct %s", def.Name),
			dim.Sprintf("(%s, %d bytes)", displaySource(def.Source, opts.BaseDir), def.Size))

		rows := []layoutRow{{offset: "offset", size: "size", align: "align", name: "field", typ: "type", cb: "cb type"}}
		for j := range def.Fields {
			f := &def.Fields[j]
			if f.Pad != nil {
				typ, name := emit.PadDecl(f.Pad)
				rows = append(rows, layoutRow{
					offset: fmt.Sprint(f.Pad.Offset),
					size:   fmt.Sprint(f.Pad.Size),
					name:   name,
					cb:     typ,
					pad:    true,
				})
			}
			typ := f.Type.String()
			if f.IsArray() {
				typ += "[" + f.DimText + "]"
			}
			rows = append(rows, layoutRow{
				offset: fmt.Sprint(f.Offset),
				size:   fmt.Sprint(f.Size),
				align:  fmt.Sprint(f.Align),
				name:   f.Name,
				typ:    typ,
				cb:     emit.CBType(f),
			})
		}

		nameW, typW := 0, 0
		for _, r := range rows {
			nameW = max(nameW, runewidth.StringWidth(r.name))
			typW = max(typW, runewidth.StringWidth(r.typ))
		}
		for _, r := range rows {
			line := fmt.Sprintf("  %6s %5s %5s  %s  %s  %s",
				r.offset, r.size, r.align,
				runewidth.FillRight(r.name, nameW), runewidth.FillRight(r.typ, typW), r.cb)
			line = strings.TrimRight(line, " ")
			if r.pad {
				line = dim.Sprint(line)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FieldLayoutJSON is one field in the JSON layout report.
type FieldLayoutJSON struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	CBType   string       `json:"cb_type"`
	ArrayLen uint32       `json:"array_len,omitempty"`
	Offset   uint32       `json:"offset"`
	Size     uint32       `json:"size"`
	Align    uint32       `json:"align"`
	Pad      *PaddingJSON `json:"pad,omitempty"`
}

type PaddingJSON struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Unit   uint32 `json:"unit"`
}

// StructLayoutJSON is one struct in the JSON layout report.
type StructLayoutJSON struct {
	Name    string            `json:"name"`
	Source  string            `json:"source"`
	Size    uint32            `json:"size"`
	Deps    []string          `json:"deps,omitempty"`
	Fields  []FieldLayoutJSON `json:"fields"`
	Aliases []emit.Alias      `json:"aliases,omitempty"`
}

// BuildLayoutJSON converts resolved structs for serialization. flat supplies
// the flattened member listing and may be nil.
func BuildLayoutJSON(defs []*types.StructDef, opts LayoutOpts, flat func(*types.StructDef) []emit.Alias) []StructLayoutJSON {
	out := make([]StructLayoutJSON, 0, len(defs))
	for _, def := range defs {
		s := StructLayoutJSON{
			Name:   def.Name,
			Source: displaySource(def.Source, opts.BaseDir),
			Size:   def.Size,
			Deps:   def.Deps,
			Fields: make([]FieldLayoutJSON, 0, len(def.Fields)),
		}
		for j := range def.Fields {
			f := &def.Fields[j]
			fj := FieldLayoutJSON{
				Name:     f.Name,
				Type:     f.Type.String(),
				CBType:   emit.CBType(f),
				ArrayLen: f.ArrayLen,
				Offset:   f.Offset,
				Size:     f.Size,
				Align:    f.Align,
			}
			if f.Pad != nil {
				fj.Pad = &PaddingJSON{Offset: f.Pad.Offset, Size: f.Pad.Size, Unit: f.Pad.Unit()}
			}
			s.Fields = append(s.Fields, fj)
		}
		if flat != nil {
			s.Aliases = flat(def)
		}
		out = append(out, s)
	}
	return out
}

// LayoutJSON writes the report as an indented JSON array.
func LayoutJSON(w io.Writer, structs []StructLayoutJSON) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(structs)
}

func displaySource(path, base string) string {
	if base == "" {
		return path
	}
	return normalizeDisplay(path, base)
}
