package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cbgen/internal/buildpipeline"
	"cbgen/internal/ui"
)

type generateOutcome struct {
	result buildpipeline.GenerateResult
	err    error
}

// runGenerateWithUI runs the pipeline in the background while a progress
// view renders its events.
func runGenerateWithUI(ctx context.Context, title string, files []string, req *buildpipeline.GenerateRequest) (buildpipeline.GenerateResult, error) {
	if req == nil {
		return buildpipeline.GenerateResult{}, fmt.Errorf("missing generate request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Generate(ctx, &reqCopy)
		outcomeCh <- generateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
