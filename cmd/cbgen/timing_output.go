package main

import (
	"fmt"
	"io"
	"time"

	"cbgen/internal/buildpipeline"
)

// printStageTimings writes one line per stage that ran, then the total.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	ran := 0
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		ran++
		fmt.Fprintf(out, "%-9s %8.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	if ran > 1 {
		fmt.Fprintf(out, "%-9s %8.1f ms\n", "total", toMillis(timings.Sum(buildpipeline.Stages...)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
