package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	if got := tm.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Fatalf("empty timer report = %+v", got)
	}

	scan := tm.Begin("scan")
	tm.End(scan, "")
	resolve := tm.Begin("resolve")
	tm.End(resolve, "cyclic struct reference")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "scan" || report.Phases[1].Note != "cyclic struct reference" {
		t.Fatalf("unexpected phases: %+v", report.Phases)
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Fatalf("total %f smaller than a phase", report.TotalMS)
	}

	summary := tm.Summary()
	for _, want := range []string{"timings:", "scan", "resolve", "// cyclic struct reference", "total"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
