package ui

import (
	"strings"
	"testing"

	"cbgen/internal/buildpipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	m := NewProgressModel("cbgen", []string{"a.h", "b.h"}, nil).(*progressModel)

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageResolve, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{File: "a.h", Stage: buildpipeline.StageResolve, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{File: "b.h", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusCached})
	m.applyEvent(buildpipeline.Event{File: "unknown.h", Status: buildpipeline.StatusError})

	if m.stageLabel != "resolving" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if m.items[0].status != "resolving" || m.items[1].status != "cached" {
		t.Fatalf("items = %+v", m.items)
	}
	if got, want := m.percent(), (0.5+1.0)/2; got != want {
		t.Fatalf("percent = %v, want %v", got, want)
	}

	view := m.View()
	for _, want := range []string{"cbgen (resolving)", "a.h", "cached"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("shaders/lighting/common.h", 12); got != "shaders/l..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a.h", 12); got != "a.h" {
		t.Fatalf("truncate short = %q", got)
	}
}
