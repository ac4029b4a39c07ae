package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[generator]
input = "shaders"
output = "gen"
suffix = ".gen.h"
aliases = false

[handles]
TextureHandle = 8

[constants]
MAX_LIGHTS = 16
`)
	nested := filepath.Join(root, "shaders", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	if m.InputDir() != filepath.Join(m.Root, "shaders") {
		t.Errorf("InputDir = %q", m.InputDir())
	}
	if m.OutputDir() != filepath.Join(m.Root, "gen") {
		t.Errorf("OutputDir = %q", m.OutputDir())
	}
	g := m.Config.Generator
	if g.Suffix != ".gen.h" || g.Aliases || !g.StaticAsserts {
		t.Errorf("generator = %+v", g)
	}
	if m.Config.Constants["MAX_LIGHTS"] != 16 {
		t.Errorf("constants = %v", m.Config.Constants)
	}
	table, err := m.Config.HandleTable()
	if err != nil {
		t.Fatal(err)
	}
	if size, ok := table.Lookup("TextureHandle"); !ok || size != 8 {
		t.Errorf("TextureHandle = %d, %v", size, ok)
	}
	if _, ok := table.Lookup("PalDescriptorHandle"); !ok {
		t.Errorf("built-in handle lost")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	m, ok, err := LoadManifest(dir)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if m.Path != "" || m.InputDir() != m.Root || m.OutputDir() != m.Root {
		t.Fatalf("defaults: %+v", m)
	}
	if !m.Config.Generator.Aliases || m.Config.Generator.Suffix != ".cpp.h" {
		t.Fatalf("generator: %+v", m.Config.Generator)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"syntax", "[generator\n", "failed to parse TOML"},
		{"unknown key", "[generator]\nsufix = \".x.h\"\n", "unknown keys: generator.sufix"},
		{"bad suffix", "[generator]\nsuffix = \".txt\"\n", "suffix"},
		{"bad handle size", "[handles]\nH = 6\n", "[handles]"},
		{"handle shadows builtin", "[handles]\nfloat4 = 16\n", "shadows"},
		{"builtin constant", "[constants]\nint = 1\n", "[constants]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.body)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestDefaultManifestTextRoundTrips(t *testing.T) {
	path := writeManifest(t, t.TempDir(), DefaultManifestText("include"))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.Input != "include" {
		t.Fatalf("input = %q", cfg.Generator.Input)
	}
}

func TestConfigDigest(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	b.Constants["N"] = 1
	da, err := a.Digest()
	if err != nil {
		t.Fatal(err)
	}
	db, err := b.Digest()
	if err != nil {
		t.Fatal(err)
	}
	again, _ := a.Digest()
	if da == db || da != again {
		t.Fatalf("digest not sensitive to config or not stable")
	}
	if Combine(da) == Combine(da, db) {
		t.Fatalf("Combine ignores deps")
	}
}
