package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileSet owns every file loaded during one run.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores normalized content and returns a fresh FileID. A later Add with
// the same path shadows the earlier one in path lookups.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	path = filepath.Clean(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads path from disk, strips a UTF-8 BOM and folds CRLF into LF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the input directory walk
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup finds the latest file added under path.
func (fs *FileSet) Lookup(path string) (*File, bool) {
	id, ok := fs.index[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Paths lists loaded paths in sorted order.
func (fs *FileSet) Paths() []string {
	out := make([]string, 0, len(fs.index))
	for p := range fs.index {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a span onto line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}
