package driver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"cbgen/internal/diag"
	"cbgen/internal/layout"
	"cbgen/internal/source"
)

var layoutCodes = map[layout.LayoutErrorKind]diag.Code{
	layout.ErrUnknownType:               diag.LayUnknownType,
	layout.ErrDuplicateStructName:       diag.LayDuplicateStruct,
	layout.ErrUnresolvedStructReference: diag.LayUnresolvedStruct,
	layout.ErrCyclicStructReference:     diag.LayCyclicStruct,
	layout.ErrUnsupportedConstruct:      diag.LayUnsupportedConstruct,
}

// ReportLayoutError turns err into a LAY diagnostic. Errors that are not
// *layout.LayoutError are reported without a location.
func ReportLayoutError(r diag.Reporter, reg *layout.Registry, err error) {
	var le *layout.LayoutError
	if !errors.As(err, &le) {
		r.Report(diag.LayUnsupportedConstruct, diag.SevError, source.Span{}, err.Error(), nil)
		return
	}
	code, ok := layoutCodes[le.Kind]
	if !ok {
		code = diag.LayUnsupportedConstruct
	}
	b := diag.ReportError(r, code, le.Span, le.Error())
	switch le.Kind {
	case layout.ErrUnknownType:
		if s := suggest(le.Type, candidates(reg)); len(s) > 0 {
			b = b.WithNote(le.Span, "did you mean "+strings.Join(quoteAll(s), " or ")+"?")
		}
	case layout.ErrUnresolvedStructReference:
		if s := suggest(le.Struct, candidates(reg)); len(s) > 0 {
			b = b.WithNote(le.Span, "did you mean "+strings.Join(quoteAll(s), " or ")+"?")
		}
	case layout.ErrDuplicateStructName:
		b = b.WithNote(le.Prev, "previous declaration of "+le.Struct)
	case layout.ErrCyclicStructReference:
		cycle := le.Cycle()
		for i := 0; i+1 < len(cycle); i++ {
			def := reg.Struct(cycle[i])
			if def == nil {
				continue
			}
			sp := def.Span
			for j := range def.Fields {
				f := &def.Fields[j]
				if f.Type.Name == cycle[i+1] {
					sp = f.Span
					break
				}
			}
			b = b.WithNote(sp, fmt.Sprintf("%s contains %s", cycle[i], cycle[i+1]))
		}
	}
	b.Emit()
}

func candidates(reg *layout.Registry) []string {
	if reg == nil {
		return nil
	}
	var out []string
	for _, def := range reg.All() {
		out = append(out, def.Name)
	}
	out = append(out, reg.Handles().Names()...)
	return out
}

// suggest returns up to two candidates within a small edit distance of name.
func suggest(name string, pool []string) []string {
	if name == "" {
		return nil
	}
	limit := max(1, len(name)/3)
	type scored struct {
		name string
		dist int
	}
	var hits []scored
	for _, c := range pool {
		if c == name {
			continue
		}
		if d := levenshtein.Distance(strings.ToLower(name), strings.ToLower(c), nil); d <= limit {
			hits = append(hits, scored{c, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	out := make([]string, 0, 2)
	for _, h := range hits {
		if len(out) == 2 {
			break
		}
		out = append(out, h.name)
	}
	return out
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
