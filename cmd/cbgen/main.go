package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cbgen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cbgen",
	Short: "Constant-buffer layout generator",
	Long: `cbgen reads C++ headers with shader-facing structs and generates
host-side mirrors whose layout matches HLSL constant-buffer packing.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(*cobra.Command, []string) { runCleanups() },
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.String("log-format", "console", "log encoding (console|json)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace detail (off|phase|file|struct)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring)")
	pf.String("trace-format", "auto", "trace encoding (auto|text|ndjson|chrome)")
	pf.Int("trace-ring-size", 4096, "records kept in ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

// main runs the root command. Any error exits with status 1.
func main() {
	err := rootCmd.Execute()
	runCleanups()
	if err != nil {
		os.Exit(1)
	}
}

var cleanups []func()

// setupRun configures logging, tracing and profiling for every command.
func setupRun(cmd *cobra.Command, _ []string) error {
	color, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if _, err := parseAutoSwitch("color", color); err != nil {
		return err
	}
	if err := setupLogging(cmd); err != nil {
		return err
	}
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopTrace)
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProf)
	return nil
}

// runCleanups runs registered cleanups in reverse order, at most once.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}
