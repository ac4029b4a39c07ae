package emit

import (
	"path/filepath"
	"strings"
)

// DefaultSuffix replaces ".h" in generated file and include names.
const DefaultSuffix = ".cpp.h"

// OutputPath maps "dir/X.h" to "dir/X<suffix>".
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return strings.TrimSuffix(input, ".h") + suffix
}

// IsGenerated reports whether path already carries the generated suffix.
func IsGenerated(path, suffix string) bool {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return strings.HasSuffix(path, suffix)
}

// IncludeRewriter returns a Rewrite func that redirects includes of any of
// inputs to their generated names. Include paths are resolved relative to
// the including file.
func IncludeRewriter(inputs []string, suffix string) func(includer, path string) (string, bool) {
	known := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		known[filepath.Clean(in)] = struct{}{}
	}
	return func(includer, path string) (string, bool) {
		if !strings.HasSuffix(path, ".h") || IsGenerated(path, suffix) {
			return "", false
		}
		target := filepath.Clean(filepath.Join(filepath.Dir(includer), filepath.FromSlash(path)))
		if _, ok := known[target]; !ok {
			return "", false
		}
		return OutputPath(path, suffix), true
	}
}
