package main

import (
	"fmt"
	"io"

	"nbmend/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	report := timer.Report()
	if len(report.Phases) == 0 {
		return
	}
	fmt.Fprint(out, timer.Summary())
}
