package parser

import (
	"fmt"

	"fortio.org/safecast"

	"cbgen/internal/diag"
	"cbgen/internal/lexer"
	"cbgen/internal/source"
)

// Constants maps array-length names to their values.
type Constants map[string]uint64

// CollectDefines merges the #defines of all results on top of base. A name
// defined twice with different values is reported; the first value wins.
func CollectDefines(results []*Result, base Constants, r diag.Reporter) Constants {
	out := make(Constants, len(base))
	for k, v := range base {
		out[k] = v
	}
	first := make(map[string]source.Span)
	for _, res := range results {
		for _, d := range res.Defines {
			prev, ok := out[d.Name]
			if !ok {
				out[d.Name] = d.Value
				first[d.Name] = d.Span
				continue
			}
			if prev == d.Value {
				continue
			}
			b := diag.ReportWarning(r, diag.ProjDuplicateDefine, d.Span,
				fmt.Sprintf("%s redefined as %d, keeping %d", d.Name, d.Value, prev))
			if sp, ok := first[d.Name]; ok {
				b = b.WithNote(sp, "first defined here")
			}
			b.Emit()
		}
	}
	return out
}

// Bind fills Dims of every field from its DimText. It reports false if any
// length could not be resolved; such fields keep a nil Dims.
func Bind(res *Result, consts Constants, r diag.Reporter) bool {
	ok := true
	for i := range res.Structs {
		decl := &res.Structs[i]
		for j := range decl.Fields {
			fd := &decl.Fields[j]
			if len(fd.DimText) == 0 {
				continue
			}
			dims := make([]uint32, 0, len(fd.DimText))
			for _, text := range fd.DimText {
				n, found := lookupLength(text, consts)
				if !found {
					diag.ReportError(r, diag.SynUnknownArrayLength, fd.Span,
						fmt.Sprintf("unknown array length %q for %s.%s", text, decl.Name, fd.Name)).
						WithNote(decl.Span, "add a #define or a [constants] entry in cbgen.toml").
						Emit()
					dims = nil
					break
				}
				v, err := safecast.Conv[uint32](n)
				if err != nil {
					diag.ReportError(r, diag.SynBadArrayLength, fd.Span,
						fmt.Sprintf("array length %d of %s.%s is too large", n, decl.Name, fd.Name)).Emit()
					dims = nil
					break
				}
				dims = append(dims, v)
			}
			if dims == nil {
				ok = false
			}
			fd.Dims = dims
		}
	}
	return ok
}

func lookupLength(text string, consts Constants) (uint64, bool) {
	if v, ok := lexer.ParseInt(text); ok {
		return v, true
	}
	v, ok := consts[text]
	return v, ok
}
