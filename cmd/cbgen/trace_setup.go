package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbgen/internal/trace"
)

// setupTracing reads the --trace flags and puts a tracer into the command
// context. Naming an output without a level traces phases. The returned
// cleanup closes the tracer, which is when ring mode writes.
func setupTracing(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()
	var cfg trace.Config
	var levelStr, modeStr, formatStr string
	var err error
	if cfg.Path, err = pf.GetString("trace"); err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if levelStr, err = pf.GetString("trace-level"); err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if modeStr, err = pf.GetString("trace-mode"); err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if formatStr, err = pf.GetString("trace-format"); err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	if cfg.RingSize, err = pf.GetInt("trace-ring-size"); err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	if cfg.Level, err = trace.ParseLevel(levelStr); err != nil {
		return nil, err
	}
	if cfg.Mode, err = trace.ParseMode(modeStr); err != nil {
		return nil, err
	}
	if cfg.Format, err = trace.ParseFormat(formatStr); err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff && cfg.Path != "" {
		cfg.Level = trace.LevelPhase
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, err
	}
	ctx := trace.With(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}
