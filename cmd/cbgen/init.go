package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cbgen/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a cbgen.toml manifest",
	Long: `Init writes a cbgen.toml with default generator settings into [path]
(the current directory when omitted), creating the directory if needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("input", ".", "header directory relative to the manifest")
}

func runInit(cmd *cobra.Command, args []string) error {
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("failed to get input flag: %w", err)
	}
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(project.DefaultManifestText(filepath.ToSlash(input))), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		rel = relPath(target, wd)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cbgen project in %s\n  - %s\n", rel, project.ManifestName)
	return nil
}
