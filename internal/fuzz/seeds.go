package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, seed := range builtinSeeds {
		f.Add([]byte(seed))
	}
}

var builtinSeeds = []string{
	"",
	"struct A\n{\n\tfloat x;\n};\n",
	"#define N 3\nstruct A\n{\n\tfloat3 v[N];\n\tuint16_t flags;\n};\n",
	"struct Inner\n{\n\tfloat2 uv;\n};\nstruct Outer\n{\n\tInner in[2];\n\tdouble d;\n};\n",
	"struct A { B b; };\nstruct B { A a; };\n",
	"struct M { float4x4 m; float3x3 n[2]; bool flag; };\n",
	"typedef struct { int x; } T;\nstruct H { PalDescriptorHandle h; };\n",
	"#include \"other.h\"\n#pragma once\nstruct E {};\n",
}

// addTestdataSeeds adds every header under the repository testdata tree.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".h" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
