package project

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"cbgen/internal/types"
)

// ManifestName is the project manifest looked up from the working directory.
const ManifestName = "cbgen.toml"

// Manifest is a decoded cbgen.toml. Path is empty when no manifest was found
// and defaults are in effect.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Generator GeneratorConfig   `toml:"generator"`
	Handles   map[string]uint32 `toml:"handles"`
	Constants map[string]uint64 `toml:"constants"`
}

type GeneratorConfig struct {
	Input         string `toml:"input"`
	Output        string `toml:"output"`
	Suffix        string `toml:"suffix"`
	Aliases       bool   `toml:"aliases"`
	StaticAsserts bool   `toml:"static_asserts"`
}

// DefaultConfig is the configuration used without a manifest.
func DefaultConfig() Config {
	return Config{
		Generator: GeneratorConfig{
			Input:         ".",
			Suffix:        ".cpp.h",
			Aliases:       true,
			StaticAsserts: true,
		},
		Handles:   map[string]uint32{},
		Constants: map[string]uint64{},
	}
}

// FindManifest walks up from startDir to locate cbgen.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes the manifest governing startDir. Without one
// it returns defaults rooted at startDir and ok=false.
func LoadManifest(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve %q: %w", startDir, err)
		}
		return &Manifest{Root: root, Config: DefaultConfig()}, false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes path over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the generator section and the handle table.
func (c Config) Validate() error {
	g := c.Generator
	if strings.TrimSpace(g.Input) == "" {
		return errors.New("[generator].input must not be empty")
	}
	if !strings.HasSuffix(g.Suffix, ".h") || g.Suffix == ".h" {
		return fmt.Errorf("[generator].suffix %q must end in .h and differ from it", g.Suffix)
	}
	if _, err := c.HandleTable(); err != nil {
		return fmt.Errorf("[handles]: %w", err)
	}
	for name := range c.Constants {
		if _, ok := types.ParseBuiltin(name); ok || name == "" {
			return fmt.Errorf("[constants]: invalid name %q", name)
		}
	}
	return nil
}

// HandleTable merges the configured handles over the built-in ones.
func (c Config) HandleTable() (*types.HandleTable, error) {
	sizes := maps.Clone(types.DefaultHandles)
	maps.Copy(sizes, c.Handles)
	return types.NewHandleTable(sizes)
}

// InputDir is the absolute directory scanned for headers.
func (m *Manifest) InputDir() string {
	return m.resolve(m.Config.Generator.Input)
}

// OutputDir is where generated headers go; it defaults to InputDir.
func (m *Manifest) OutputDir() string {
	if strings.TrimSpace(m.Config.Generator.Output) == "" {
		return m.InputDir()
	}
	return m.resolve(m.Config.Generator.Output)
}

// CacheDir holds the digest cache.
func (m *Manifest) CacheDir() string {
	return filepath.Join(m.Root, ".cbgen")
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}

// Digest identifies the effective configuration. Map keys are encoded in
// sorted order so equal configs hash equally.
func (c Config) Digest() (Digest, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return Digest{}, fmt.Errorf("encode config: %w", err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// DefaultManifestText is what `cbgen init` writes.
func DefaultManifestText(input string) string {
	if input == "" {
		input = "."
	}
	return fmt.Sprintf(`# cbgen project manifest
[generator]
input = %q
output = ""
suffix = ".cpp.h"
aliases = true
static_asserts = true

[handles]
PalDescriptorHandle = 4

[constants]
`, filepath.ToSlash(input))
}
