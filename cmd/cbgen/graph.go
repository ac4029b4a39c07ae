package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cbgen/internal/diag"
	"cbgen/internal/project/dag"
)

var graphCmd = &cobra.Command{
	Use:   "graph [dir | headers...]",
	Short: "Show struct containment order and cycles",
	Long: `Graph prints the order in which structs are laid out: each batch only
contains structs whose members are laid out by earlier batches. Structs on a
containment cycle are reported as errors.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("format", "text", "output format (text|dot)")
	graphCmd.Flags().Bool("sources", false, "also list header dependencies")
	addDiagFlags(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "dot" {
		return fmt.Errorf("unknown format: %s", format)
	}
	withSources, err := cmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
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
	s, err := analyze(ctx, t, false)
	span.End(err)
	if err != nil {
		return err
	}
	if s.Bag.HasErrors() {
		_ = printDiagnostics(cmd, s.Bag, s.FileSet, dopts)
		return errors.New("graph failed")
	}

	defs := s.Registry.All()
	idx := dag.BuildIndex(defs)
	reporter := diag.BagReporter{Bag: s.Bag}
	g, slots := dag.BuildGraph(idx, defs, reporter)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, g, slots, topo, reporter)

	out := cmd.OutOrStdout()
	if format == "dot" {
		writeDot(out, idx, g)
	} else {
		for i, batch := range topo.Batches {
			fmt.Fprintf(out, "batch %d: %s\n", i, strings.Join(idx.Names(batch), ", "))
		}
		if topo.Cyclic {
			fmt.Fprintf(out, "cyclic: %s\n", strings.Join(idx.Names(dag.OnCycle(g, topo)), ", "))
		}
	}
	if withSources && format == "text" {
		writeSourceDeps(out, dag.SourceDeps(g, slots), t.baseDir())
	}

	if err := printDiagnostics(cmd, s.Bag, s.FileSet, dopts); err != nil {
		return err
	}
	if s.Bag.HasErrors() {
		return errors.New("graph has errors")
	}
	return nil
}

// writeDot renders containment edges from container to member struct.
func writeDot(w io.Writer, idx dag.StructIndex, g dag.Graph) {
	fmt.Fprintln(w, "digraph structs {")
	for id, name := range idx.IDToName {
		if !g.Present[id] {
			continue
		}
		fmt.Fprintf(w, "  %q;\n", name)
		for _, dep := range g.Deps[id] {
			fmt.Fprintf(w, "  %q -> %q;\n", name, idx.IDToName[int(dep)])
		}
	}
	fmt.Fprintln(w, "}")
}

func writeSourceDeps(w io.Writer, deps map[string][]string, base string) {
	files := make([]string, 0, len(deps))
	for f := range deps {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		names := make([]string, len(deps[f]))
		for i, d := range deps[f] {
			names[i] = relPath(d, base)
		}
		fmt.Fprintf(w, "%s: %s\n", relPath(f, base), strings.Join(names, " "))
	}
}
