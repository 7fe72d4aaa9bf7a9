package main

import (
	"fmt"
	"io"
	"time"

	"kwarg/internal/driver"
	"kwarg/internal/pipeline"
)

var stagePast = map[pipeline.Stage]string{
	pipeline.StageLoad:   "loaded",
	pipeline.StageExpand: "expanded",
	pipeline.StageWrite:  "wrote",
}

// printTimings writes the per-stage wall time and, when files reported
// phases, their summed breakdown.
func printTimings(out io.Writer, res *driver.ExpandResult) {
	if out == nil || res == nil {
		return
	}
	res.Timings.Each(func(stage pipeline.Stage, took time.Duration) {
		fmt.Fprintf(out, "%s %.1f ms\n", stagePast[stage], float64(took)/float64(time.Millisecond))
	})
	if len(res.Timing.Phases) > 0 {
		fmt.Fprintln(out, "phases:")
		_ = res.Timing.WriteTable(out)
	}
}
