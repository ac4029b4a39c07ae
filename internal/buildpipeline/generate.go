// Package buildpipeline runs a generation over a set of headers and reports
// per-file progress for the CLI and the progress UI.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cbgen/internal/diag"
	"cbgen/internal/driver"
	"cbgen/internal/source"
)

// ErrDiagnostics is returned when the run stopped on reported errors.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// GenerateRequest configures one pipeline run.
type GenerateRequest struct {
	Files    []string
	BaseDir  string // shortens file names in progress events
	Options  driver.Options
	Progress ProgressSink
}

// GenerateResult captures the session and stage timings.
type GenerateResult struct {
	Session *driver.Session
	Timings Timings
}

// Generate runs every driver stage. Diagnostics stay in Session.Bag; the
// returned error is ErrDiagnostics when any of them is an error.
func Generate(ctx context.Context, req *GenerateRequest) (GenerateResult, error) {
	var result GenerateResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing generate request")
	}

	display := make(map[string]string, len(req.Files))
	names := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		name := DisplayPath(f, req.BaseDir)
		display[f] = name
		names = append(names, name)
	}
	emitQueued(req.Progress, names)

	phase := &phaseObserver{sink: req.Progress, files: names, timings: &result.Timings}
	opts := req.Options
	next := opts.Observer
	opts.Observer = func(ev driver.PhaseEvent) {
		phase.OnPhase(ev)
		if next != nil {
			next(ev)
		}
	}

	s, err := driver.Generate(ctx, req.Files, opts)
	result.Session = s
	if err != nil {
		emitStage(req.Progress, names, phase.current, StatusError, err, 0)
		return result, err
	}

	failed := failedFiles(s)
	if req.Progress != nil {
		for _, f := range req.Files {
			if failed[f] {
				req.Progress.OnEvent(Event{File: display[f], Stage: phase.current, Status: StatusError, Err: ErrDiagnostics})
			}
		}
		for _, out := range s.Outputs {
			status := StatusDone
			if out.Cached {
				status = StatusCached
			}
			name, ok := display[out.Input]
			if !ok {
				name = DisplayPath(out.Input, req.BaseDir)
			}
			req.Progress.OnEvent(Event{File: name, Stage: phase.current, Status: status})
		}
	}
	if s.Bag.HasErrors() {
		if len(failed) == 0 {
			emitStage(req.Progress, nil, phase.current, StatusError, ErrDiagnostics, 0)
		}
		return result, ErrDiagnostics
	}
	emitStage(req.Progress, nil, phase.current, StatusDone, nil, result.Timings.Sum(Stages...))
	return result, nil
}

// failedFiles maps input paths to true when an error diagnostic points into
// them or they could not be loaded.
func failedFiles(s *driver.Session) map[string]bool {
	out := make(map[string]bool)
	for _, f := range s.Files {
		if f.Result == nil && f.Bag != nil && f.Bag.HasErrors() {
			out[f.Path] = true
		}
	}
	for _, d := range s.Bag.Items() {
		if d.Severity != diag.SevError || d.Primary == (source.Span{}) {
			continue
		}
		if file := s.FileSet.Get(d.Primary.File); file != nil {
			out[file.Path] = true
		}
	}
	return out
}

type phaseObserver struct {
	sink    ProgressSink
	files   []string
	timings *Timings
	current Stage
}

// OnPhase forwards driver phase boundaries as stage events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage := Stage(ev.Name)
	switch ev.Status {
	case driver.PhaseStart:
		p.current = stage
		emitStage(p.sink, p.files, stage, StatusWorking, nil, 0)
	case driver.PhaseEnd:
		p.timings.Set(stage, ev.Elapsed)
	}
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageScan, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
