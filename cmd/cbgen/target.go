package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cbgen/internal/driver"
	"cbgen/internal/project"
)

// target is the resolved set of headers and driver options for a command.
type target struct {
	manifest *project.Manifest
	hasToml  bool
	files    []string
	opts     driver.Options
}

// loadTarget resolves the manifest and inputs from args. With no args the
// manifest governing the working directory is used. A directory arg is the
// manifest search start; header args are generated as given.
func loadTarget(cmd *cobra.Command, args []string) (*target, error) {
	start := "."
	var explicit []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if info.IsDir() {
			if len(args) > 1 {
				return nil, fmt.Errorf("%s: a directory cannot be mixed with other inputs", arg)
			}
			start = arg
			continue
		}
		if !strings.HasSuffix(arg, ".h") {
			return nil, fmt.Errorf("%s: expected a .h header", arg)
		}
		explicit = append(explicit, arg)
	}
	if len(explicit) > 0 {
		start = filepath.Dir(explicit[0])
	}

	m, ok, err := project.LoadManifest(start)
	if err != nil {
		return nil, err
	}
	cfg := m.Config

	handles, err := cfg.HandleTable()
	if err != nil {
		return nil, fmt.Errorf("invalid handle table: %w", err)
	}
	digest, err := cfg.Digest()
	if err != nil {
		return nil, err
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	t := &target{
		manifest: m,
		hasToml:  ok,
		opts: driver.Options{
			MaxDiagnostics: maxDiag,
			Handles:        handles,
			Constants:      cfg.Constants,
			Suffix:         cfg.Generator.Suffix,
			InputRoot:      m.InputDir(),
			Aliases:        cfg.Generator.Aliases,
			StaticAsserts:  cfg.Generator.StaticAsserts,
			Banner:         true,
			ConfigDigest:   digest,
		},
	}
	if strings.TrimSpace(cfg.Generator.Output) != "" {
		t.opts.OutputDir = m.OutputDir()
	}

	if len(explicit) > 0 {
		t.files = explicit
		return t, nil
	}
	files, err := driver.ListHeaders(m.InputDir(), t.opts.Suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list headers in %s: %w", m.InputDir(), err)
	}
	t.files = files
	return t, nil
}

// baseDir is the directory paths are shown relative to.
func (t *target) baseDir() string {
	return t.manifest.Root
}

// relPath shows p relative to base when it lies below it.
func relPath(p, base string) string {
	if base == "" {
		return p
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
