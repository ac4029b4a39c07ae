package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cbgen/internal/driver"
	"cbgen/internal/emit"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove the digest cache",
	Long: `Clean removes the .cbgen digest cache next to the manifest. With --outputs
it also deletes every generated header of the project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("outputs", false, "also delete generated headers")
}

func runClean(cmd *cobra.Command, args []string) error {
	withOutputs, err := cmd.Flags().GetBool("outputs")
	if err != nil {
		return fmt.Errorf("failed to get outputs flag: %w", err)
	}
	t, err := loadTarget(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	cache, err := driver.OpenDiskCache(t.manifest.CacheDir())
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(out, "removed %s\n", relPath(cache.Dir(), t.baseDir()))

	if !withOutputs {
		return nil
	}
	s := driver.NewSession(t.opts)
	for _, input := range t.files {
		path := s.OutputPath(input)
		if !emit.IsGenerated(path, t.opts.Suffix) {
			continue
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		fmt.Fprintf(out, "removed %s\n", relPath(path, t.baseDir()))
	}
	return nil
}
