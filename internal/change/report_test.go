package change

import (
	"errors"
	"testing"
)

func TestReportCountsAndLookups(t *testing.T) {
	r := NewReport()
	r.MissingCell("t1")
	r.DuplicateTag("q1")
	r.DuplicateTag("q1")
	r.Relabeled("a1", []string{"fib"})

	if r.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", r.Len())
	}
	if got := r.Count(DuplicateTag); got != 2 {
		t.Fatalf("Count(DuplicateTag) = %d, want 2", got)
	}
	if !r.Has(MissingCell, "t1") {
		t.Fatalf("expected MissingCell for t1")
	}
	if r.Has(MissingCell, "q1") {
		t.Fatalf("unexpected MissingCell for q1")
	}
	if !r.HasWarnings() {
		t.Fatalf("expected warnings")
	}
	if r.HasErrors() {
		t.Fatalf("unexpected errors")
	}
}

func TestReportFormatIsStable(t *testing.T) {
	r := NewReport()
	r.MissingCell("t1")
	r.UnmatchedFunction("a1", []string{"fib", "gcd"})
	r.Failure(WriteFailure, errors.New("disk full\nretry"))

	want := "WARNING REC1001 MissingCell t1: submission is missing cell \"t1\"\n" +
		"WARNING REC1002 UnmatchedFunction a1: student function not found: fib, gcd\n" +
		"ERROR IO2002 DocumentWriteFailure: disk full\\nretry"
	if got := r.Format(); got != want {
		t.Fatalf("Format mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestReportSummary(t *testing.T) {
	r := NewReport()
	r.DuplicateTag("q1")
	r.MissingCell("t2")
	r.DuplicateTag("q3")
	if got, want := r.Summary(), "DuplicateTag=2 MissingCell=1"; got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
	if got := NewReport().Summary(); got != "" {
		t.Fatalf("empty Summary = %q", got)
	}
}

func TestNilReportIsSafe(t *testing.T) {
	var r *Report
	r.MissingCell("x")
	if r.Len() != 0 || r.Items() != nil || r.Format() != "" {
		t.Fatalf("nil report must behave as empty")
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		MissingCell:    "REC1001",
		Relabeled:      "REC1004",
		ReadFailure:    "IO2001",
		ExecuteFailure: "IO2004",
		ApplyFailure:   "IO2005",
		UnknownCode:    "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%v.ID() = %q, want %q", code.Name(), got, want)
		}
	}
}

func TestApplyFailureIsError(t *testing.T) {
	if ApplyFailure.Name() != "ApplyFailure" {
		t.Fatalf("Name() = %q", ApplyFailure.Name())
	}
	if ApplyFailure.DefaultSeverity() != SevError {
		t.Fatalf("apply failures must be errors")
	}
	if ApplyFailure.Title() == ReadFailure.Title() {
		t.Fatalf("apply failures must not read as read failures")
	}
}
