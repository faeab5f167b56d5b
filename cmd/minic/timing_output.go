package main

import (
	"fmt"
	"io"
	"time"

	"minic/internal/buildpipeline"
)

// printStageTimings prints every recorded stage in pipeline order. Build
// timings are summed across units.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-9s %.2f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(out, "%-9s %.2f ms\n", "total", toMillis(timings.Sum(buildpipeline.Stages...)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
