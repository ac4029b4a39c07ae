package main

import (
	"context"

	"github.com/spf13/cobra"

	"cbgen/internal/driver"
	"cbgen/internal/trace"
)

// commandSpan opens the command-scope trace span and returns a context
// carrying it.
func commandSpan(cmd *cobra.Command) (context.Context, *trace.Span) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return trace.Start(ctx, trace.ScopeCommand, "cbgen "+cmd.Name())
}

// analyze scans and registers the target headers and, when resolve is set,
// lays out every struct. Diagnostics stay in the session bag.
func analyze(ctx context.Context, t *target, resolve bool) (*driver.Session, error) {
	s := driver.NewSession(t.opts)
	if err := s.Scan(ctx, t.files); err != nil {
		return s, err
	}
	if s.Bag.HasErrors() || !s.Register(ctx) {
		return s, nil
	}
	if resolve {
		s.Resolve(ctx)
	}
	return s, nil
}
