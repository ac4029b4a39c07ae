package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cbgen/internal/buildpipeline"
	"cbgen/internal/diag"
	"cbgen/internal/driver"
	"cbgen/internal/source"
)

var genCmd = &cobra.Command{
	Use:   "gen [dir | headers...]",
	Short: "Generate constant-buffer mirrors for headers",
	Long: `Generate scans every header under the project input directory (or the
headers given on the command line), lays out the structs they declare and
writes a <name>.cpp.h mirror next to each one, or under [generator].output.`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	genCmd.Flags().Bool("dry-run", false, "render outputs without writing them")
	genCmd.Flags().Bool("print", false, "print rendered outputs to stdout (implies --dry-run)")
	genCmd.Flags().Bool("no-cache", false, "ignore and do not update the digest cache")
	genCmd.Flags().Int("jobs", 0, "max parallel scan workers (0=auto)")
	genCmd.Flags().StringP("output", "o", "", "output directory (overrides [generator].output)")
	addDiagFlags(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	ui, err := parseAutoSwitch("ui", uiValue)
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	printOut, err := cmd.Flags().GetBool("print")
	if err != nil {
		return fmt.Errorf("failed to get print flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
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
	if len(t.files) == 0 {
		bag := diag.NewBag(1)
		bag.Add(diag.NewError(diag.ProjNoInputs, source.Span{}, "no input headers found in "+t.manifest.InputDir()))
		if err := printDiagnostics(cmd, bag, source.NewFileSet(), dopts); err != nil {
			return err
		}
		return errors.New("generation failed")
	}

	t.opts.Jobs = jobs
	t.opts.DryRun = dryRun || printOut
	if outputDir != "" {
		abs, absErr := filepath.Abs(outputDir)
		if absErr != nil {
			return fmt.Errorf("failed to resolve output directory: %w", absErr)
		}
		t.opts.OutputDir = abs
	}
	if !noCache && !t.opts.DryRun {
		cache, cacheErr := driver.OpenDiskCache(t.manifest.CacheDir())
		if cacheErr != nil {
			driver.Logger().Warn("cache disabled", zap.Error(cacheErr))
		} else {
			t.opts.Cache = cache
		}
	}

	ctx, span := commandSpan(cmd)
	req := &buildpipeline.GenerateRequest{
		Files:   t.files,
		BaseDir: t.baseDir(),
		Options: t.opts,
	}

	var result buildpipeline.GenerateResult
	useUI := !quiet && !printOut && dopts.format == "pretty" && ui.enabled(os.Stdout)
	if useUI {
		display := make([]string, len(t.files))
		for i, f := range t.files {
			display[i] = buildpipeline.DisplayPath(f, t.baseDir())
		}
		result, err = runGenerateWithUI(ctx, "cbgen gen", display, req)
	} else {
		result, err = buildpipeline.Generate(ctx, req)
	}
	span.End(err)

	s := result.Session
	if s != nil {
		if perr := printDiagnostics(cmd, s.Bag, s.FileSet, dopts); perr != nil {
			return perr
		}
	}
	if err != nil {
		if errors.Is(err, buildpipeline.ErrDiagnostics) {
			return errors.New("generation failed")
		}
		return err
	}

	out := cmd.OutOrStdout()
	if printOut {
		for _, o := range s.Outputs {
			fmt.Fprintf(out, "// ---- %s\n", o.Path)
			_, _ = out.Write(o.Content)
		}
	} else if !quiet && !useUI {
		var written, unchanged, cached int
		for _, o := range s.Outputs {
			switch {
			case o.Cached:
				cached++
			case o.Written:
				written++
			default:
				unchanged++
			}
		}
		verb := "generated"
		if t.opts.DryRun {
			verb = "rendered"
		}
		fmt.Fprintf(out, "%s %d file(s): %d written, %d unchanged, %d cached\n",
			verb, len(s.Outputs), written, unchanged, cached)
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), result.Timings)
	}
	return nil
}
