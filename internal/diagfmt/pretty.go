package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cbgen/internal/diag"
	"cbgen/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgCyan),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes diagnostics in bag order (callers sort first):
//
//	light.h:3:16: ERROR LAY3001: unknown type "Ligt" for field Scene.sun
//	   3 | struct Scene { Ligt sun; };
//	     |                ^~~~~~~~~
//	  note: light.h:3:16: did you mean "Light"?
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		head := pal.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID())
		if located(fs, d.Primary) {
			f := fs.Get(d.Primary.File)
			start, _ := fs.Resolve(d.Primary)
			fmt.Fprintf(w, "%s: %s: %s\n",
				pal.bold.Sprintf("%s:%d:%d", formatPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col),
				head, d.Message)
			writeSnippet(w, fs, d.Primary, int(opts.Context), pal)
		} else {
			fmt.Fprintf(w, "%s: %s\n", head, d.Message)
		}

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			label := pal.note.Sprint("note")
			if located(fs, n.Span) {
				f := fs.Get(n.Span.File)
				start, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", label, formatPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col, n.Msg)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", label, n.Msg)
			}
		}
	}
}

// writeSnippet prints the primary line with context lines around it and an
// underline below the span. Multi-line spans are underlined to the end of
// their first line.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, pal palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	context = max(context, 0)
	first := max(int(start.Line)-context, 1)
	last := min(int(start.Line)+context, len(f.LineIdx)+1)
	gutterWidth := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		line := expandTabs(f.Line(uint32(n))) // #nosec G115 -- n is bounded by the line count
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth+2, n), line)
		if n != int(start.Line) {
			continue
		}
		raw := f.Line(start.Line)
		col := clampCol(raw, int(start.Col)-1)
		endCol := len(raw)
		if end.Line == start.Line {
			endCol = clampCol(raw, int(end.Col)-1)
		}
		pad := runewidth.StringWidth(expandTabs(raw[:col]))
		width := max(runewidth.StringWidth(expandTabs(raw[col:endCol])), 1)
		underline := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth+2, ""), strings.Repeat(" ", pad), pal.caret.Sprint(underline))
	}
}

func clampCol(line string, col int) int {
	return min(max(col, 0), len(line))
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - width%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			width += n
			continue
		}
		b.WriteRune(r)
		width += runewidth.RuneWidth(r)
	}
	return b.String()
}
