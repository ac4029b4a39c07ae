package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cbgen/internal/driver"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// final returns the last status seen for every file.
func (r *recorder) final() map[string]Status {
	out := make(map[string]Status)
	for _, ev := range r.events {
		if ev.File != "" {
			out[ev.File] = ev.Status
		}
	}
	return out
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateReportsProgress(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		write(t, dir, "a.h", "struct A { float4 v; };\n"),
		write(t, dir, "b.h", "#include \"a.h\"\nstruct B { A a; float x; };\n"),
	}
	rec := &recorder{}
	res, err := Generate(context.Background(), &GenerateRequest{
		Files:    files,
		BaseDir:  dir,
		Progress: rec,
		Options:  driver.Options{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]Status{"a.h": StatusDone, "b.h": StatusDone}, rec.final()); diff != "" {
		t.Fatalf("final statuses (-want +got):\n%s", diff)
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Errorf("no timing for %s", stage)
		}
	}
	if rec.events[0].Status != StatusQueued {
		t.Fatalf("first event = %+v, want queued", rec.events[0])
	}
}

func TestGenerateMarksFailedFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		write(t, dir, "ok.h", "struct Ok { float v; };\n"),
		write(t, dir, "bad.h", "struct Bad { Missing m; };\n"),
	}
	rec := &recorder{}
	res, err := Generate(context.Background(), &GenerateRequest{Files: files, BaseDir: dir, Progress: rec})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("err = %v, want ErrDiagnostics", err)
	}
	if res.Session == nil || !res.Session.Bag.HasErrors() {
		t.Fatal("session should carry the layout error")
	}
	final := rec.final()
	if final["bad.h"] != StatusError {
		t.Fatalf("bad.h status = %s", final["bad.h"])
	}
	if final["ok.h"] == StatusDone {
		t.Fatal("ok.h must not be reported done when the run failed")
	}
}

func TestNormalizeProgressFiles(t *testing.T) {
	base := t.TempDir()
	got := normalizeProgressFiles([]string{
		filepath.Join(base, "b.h"),
		filepath.Join(base, "sub", "a.h"),
		filepath.Join(base, "b.h"),
		"",
	}, base)
	if diff := cmp.Diff([]string{"b.h", "sub/a.h"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
