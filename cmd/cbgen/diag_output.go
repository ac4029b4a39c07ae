package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cbgen/internal/diag"
	"cbgen/internal/diagfmt"
	"cbgen/internal/source"
	"cbgen/internal/version"
)

// diagOptions collects the diagnostic output flags of a command.
type diagOptions struct {
	format    string
	withNotes bool
	context   int8
	baseDir   string
	args      []string
}

func addDiagFlags(cmd *cobra.Command) {
	cmd.Flags().String("diag-format", "pretty", "diagnostic output format (pretty|short|json|sarif)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	cmd.Flags().Int8("context", 1, "source lines shown around each diagnostic")
}

func readDiagFlags(cmd *cobra.Command, baseDir string, args []string) (diagOptions, error) {
	format, err := cmd.Flags().GetString("diag-format")
	if err != nil {
		return diagOptions{}, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return diagOptions{}, fmt.Errorf("unknown diagnostic format: %s", format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return diagOptions{}, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	ctxLines, err := cmd.Flags().GetInt8("context")
	if err != nil {
		return diagOptions{}, fmt.Errorf("failed to get context flag: %w", err)
	}
	return diagOptions{format: format, withNotes: withNotes, context: ctxLines, baseDir: baseDir, args: args}, nil
}

// printDiagnostics sorts bag and writes it in the requested format. Pretty
// output goes to stderr; machine formats go to stdout.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, o diagOptions) error {
	if bag == nil || (bag.Len() == 0 && (o.format == "pretty" || o.format == "short")) {
		return nil
	}
	bag.Sort()
	bag.Dedup()
	switch o.format {
	case "json":
		return diagfmt.JSON(cmd.OutOrStdout(), bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			BaseDir:          o.baseDir,
			IncludeNotes:     o.withNotes,
		})
	case "short":
		_, err := fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(bag.Items(), fs, o.baseDir, o.withNotes))
		return err
	case "sarif":
		return diagfmt.Sarif(cmd.OutOrStdout(), bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "cbgen",
			ToolVersion:    version.Version,
			InvocationArgs: o.args,
			BaseDir:        o.baseDir,
		})
	default:
		w := cmd.ErrOrStderr()
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			Context:   o.context,
			PathMode:  diagfmt.PathModeRelative,
			BaseDir:   o.baseDir,
			ShowNotes: o.withNotes,
		})
		printSummary(w, bag)
		return nil
	}
}

func printSummary(w io.Writer, bag *diag.Bag) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)", errs, warns)
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, ", %d more not shown", n)
	}
	fmt.Fprintln(w)
}
