package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cbgen/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders one line per diagnostic:
//
//	error SYN2001 shaders/light.h:3:5 unexpected token
//
// Paths are made relative to base when possible. Output is sorted so it can be
// compared in tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet, base string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Message:  flatten(d.Message),
		})
		locate(&rendered[len(rendered)-1], fs, d.Primary, base)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			rendered = append(rendered, shortDiagnostic{Severity: "note", Code: d.Code.ID(), Message: flatten(n.Msg)})
			locate(&rendered[len(rendered)-1], fs, n.Span, base)
		}
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})
	var b strings.Builder
	for i, d := range rendered {
		if d.Path == "" {
			fmt.Fprintf(&b, "%s %s %s", d.Severity, d.Code, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func locate(out *shortDiagnostic, fs *source.FileSet, span source.Span, base string) {
	if fs == nil || span == (source.Span{}) {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, _ := fs.Resolve(span)
	out.Path = filepath.ToSlash(f.FormatPath(base))
	out.Line, out.Column = start.Line, start.Col
}

func flatten(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
