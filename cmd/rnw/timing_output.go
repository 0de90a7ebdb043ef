package main

import (
	"fmt"
	"io"
	"time"

	"rnw/internal/buildpipeline"
)

var timingLines = []struct {
	stage buildpipeline.Stage
	label string
}{
	{buildpipeline.StageRead, "read"},
	{buildpipeline.StageRewrite, "rewrote"},
	{buildpipeline.StageWrite, "wrote"},
	{buildpipeline.StageBundle, "bundled"},
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, line := range timingLines {
		if !timings.Has(line.stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", line.label, toMillis(timings.Duration(line.stage))); err != nil {
			panic(err)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
