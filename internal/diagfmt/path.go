package diagfmt

import (
	"path/filepath"
	"strings"

	"cbgen/internal/source"
)

const autoPathLimit = 48

func formatPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return ""
	}
	var p string
	switch mode {
	case PathModeAbsolute:
		p = f.Path
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	case PathModeRelative:
		p = f.Path
		if base != "" {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			if absBase, err := filepath.Abs(base); err == nil {
				if rel, err := filepath.Rel(absBase, p); err == nil && !strings.HasPrefix(rel, "..") {
					p = rel
				}
			}
		}
	case PathModeBasename:
		p = f.BaseName()
	default:
		p = f.FormatPath(base)
		if filepath.IsAbs(p) && len(p) > autoPathLimit {
			p = f.BaseName()
		}
	}
	return filepath.ToSlash(p)
}

// located reports whether span points into a file. Diagnostics about the run
// itself (I/O, configuration) carry a zero span.
func located(fs *source.FileSet, span source.Span) bool {
	return fs != nil && span != (source.Span{}) && fs.Get(span.File) != nil
}

func normalizeDisplay(path, base string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absBase, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
