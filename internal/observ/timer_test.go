package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerAccumulates(t *testing.T) {
	tm := NewTimer()
	tm.Observe("load", 2*time.Millisecond)
	tm.Observe("reconcile", time.Millisecond)
	tm.Observe("load", 3*time.Millisecond)
	tm.Note("load", "2 files")

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.Phases[0].Name != "load" || rep.Phases[1].Name != "reconcile" {
		t.Fatalf("unexpected phases %+v", rep.Phases)
	}
	if rep.Phases[0].Count != 2 || rep.Phases[0].DurationMS != 5 {
		t.Fatalf("load not accumulated: %+v", rep.Phases[0])
	}
	if rep.TotalMS != 6 {
		t.Fatalf("total = %v, want 6", rep.TotalMS)
	}
	if !strings.Contains(tm.Summary(), "// 2 files") {
		t.Fatalf("note missing from summary:\n%s", tm.Summary())
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Observe("x", time.Second)
	tm.Track("y")()
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer must record nothing")
	}
}
