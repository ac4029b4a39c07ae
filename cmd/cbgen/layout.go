package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cbgen/internal/diagfmt"
	"cbgen/internal/emit"
	"cbgen/internal/types"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [dir | headers...]",
	Short: "Print the resolved constant-buffer layout of each struct",
	Args:  cobra.ArbitraryArgs,
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	layoutCmd.Flags().StringSlice("struct", nil, "only report these structs")
	layoutCmd.Flags().Bool("aliases", false, "include flattened member aliases in JSON output")
	addDiagFlags(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	only, err := cmd.Flags().GetStringSlice("struct")
	if err != nil {
		return fmt.Errorf("failed to get struct flag: %w", err)
	}
	withAliases, err := cmd.Flags().GetBool("aliases")
	if err != nil {
		return fmt.Errorf("failed to get aliases flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	t, err := loadTarget(cmd, args)
	if err != nil {
		return err
	}
	dopts, err := readDiagFlags(cmd, t.baseDir(), args)
	if err != nil {
		return err
	}

	ctx, span := commandSpan(cmd)
	s, err := analyze(ctx, t, len(only) == 0)
	if err == nil && len(only) > 0 && !s.Bag.HasErrors() {
		s.ResolveNames(ctx, only)
	}
	span.End(err)
	if perr := printDiagnostics(cmd, s.Bag, s.FileSet, dopts); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	if s.Bag.HasErrors() {
		return errors.New("layout failed")
	}

	defs, err := selectStructs(s.Registry.All(), only)
	if err != nil {
		return err
	}
	opts := diagfmt.LayoutOpts{Color: useColor(cmd, os.Stdout), BaseDir: t.baseDir()}
	if format == "json" {
		var flat func(*types.StructDef) []emit.Alias
		if withAliases {
			flat = func(def *types.StructDef) []emit.Alias { return emit.Flatten(s.Registry, def) }
		}
		err = diagfmt.LayoutJSON(cmd.OutOrStdout(), diagfmt.BuildLayoutJSON(defs, opts, flat))
	} else {
		err = diagfmt.LayoutPretty(cmd.OutOrStdout(), defs, opts)
	}
	if err != nil {
		return err
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), s.Timer.Summary())
	}
	return nil
}

// selectStructs keeps defs named in only, in declaration order. An empty
// filter keeps everything. Names were already checked by ResolveNames.
func selectStructs(defs []*types.StructDef, only []string) ([]*types.StructDef, error) {
	if len(only) == 0 {
		return defs, nil
	}
	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[name] = true
	}
	out := make([]*types.StructDef, 0, len(only))
	for _, def := range defs {
		if want[def.Name] {
			out = append(out, def)
			delete(want, def.Name)
		}
	}
	for _, name := range only {
		if want[name] {
			return nil, fmt.Errorf("unknown struct %q", name)
		}
	}
	return out, nil
}
