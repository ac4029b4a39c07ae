package source

import (
	"path/filepath"
	"strings"
)

type (
	// FileID identifies a file within a FileSet.
	FileID uint32
	// FileFlags records how a file's content was obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks content added from memory (tests, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File holds the normalized content of one header.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Text returns the bytes covered by span, clamped to the content.
func (f *File) Text(span Span) string {
	n := uint32(len(f.Content))
	start, end := min(span.Start, n), min(span.End, n)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// Line returns line n (1-based) without its newline.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content))
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// BaseName is the file name without directories.
func (f *File) BaseName() string {
	return filepath.Base(f.Path)
}

// FormatPath renders the path relative to base when that is shorter.
func (f *File) FormatPath(base string) string {
	if base == "" || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	rel, err := filepath.Rel(base, f.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return f.Path
	}
	return rel
}
