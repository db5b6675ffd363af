package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"nbmend/internal/change"
	"nbmend/internal/notebook"
	"nbmend/internal/testkit"
)

func apply(t *testing.T, fn ApplyFunc, tmpl, sub *notebook.Document) Outcome {
	t.Helper()
	out, err := fn(tmpl, sub)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Report == nil {
		t.Fatalf("outcome without report")
	}
	return out
}

func TestSortOnlyScenarioA(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Answer("a"), testkit.Answer("b"), testkit.Answer("c"))
	sub := testkit.Doc(t,
		testkit.Answer("c", "c\n"),
		testkit.Answer("a", "a\n"),
		testkit.Plain("x\n"),
		testkit.Answer("b", "b\n"),
	)
	out := apply(t, SortOnly, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	if diff := cmp.Diff([]string{"a", "b", "c", ""}, testkit.Tags(out.Doc)); diff != "" {
		t.Fatalf("tag order mismatch (-want +got):\n%s", diff)
	}
	if src := out.Doc.Cell(3).Source(); len(src) != 1 || src[0] != "x\n" {
		t.Fatalf("untagged cell must trail, got %v", src)
	}
	if err := testkit.CheckOrder(tmpl, out.Doc); err != nil {
		t.Fatal(err)
	}
	again := apply(t, SortOnly, tmpl, out.Doc)
	if again.Changed {
		t.Fatalf("second sort must be unchanged")
	}
}

func TestSortOnlyKeepsEveryCell(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Answer("a"), testkit.Answer("b"), testkit.Answer("m"))
	sub := testkit.Doc(t,
		testkit.Answer("z", "z\n"),
		testkit.Answer("b", "b1\n"),
		testkit.Plain("p\n"),
		testkit.Answer("a", "a\n"),
		testkit.Answer("b", "b2\n"),
	)
	out := apply(t, SortOnly, tmpl, sub)
	want := [][]string{{"a\n"}, {"b1\n"}, {"b2\n"}, {"z\n"}, {"p\n"}}
	if diff := cmp.Diff(want, testkit.Sources(out.Doc)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !out.Report.Has(change.MissingCell, "m") || out.Report.Len() != 1 {
		t.Fatalf("expected one MissingCell(m):\n%s", out.Report.Format())
	}
}

func TestAddMissingScenarioB(t *testing.T) {
	tmpl := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n", "    # YOUR CODE HERE\n"),
		testkit.Test("t1", 5, "assert f(1) == 1\n"),
	)
	sub := testkit.Doc(t,
		testkit.Plain("intro\n"),
		testkit.Answer("a1", "def f(x):\n", "    return x\n"),
		testkit.Plain("scratch\n"),
	)
	out := apply(t, Default().AddMissing, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	if diff := cmp.Diff([]string{"", "a1", "t1", ""}, testkit.Tags(out.Doc)); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if !out.Doc.Cell(2).Equal(tmpl.Cell(1)) {
		t.Fatalf("inserted cell must be a copy of the template cell")
	}
	if out.Report.Count(change.MissingCell) != 0 {
		t.Fatalf("no MissingCell expected:\n%s", out.Report.Format())
	}
	if sub.Len() != 3 {
		t.Fatalf("input submission modified")
	}
	if again := apply(t, Default().AddMissing, tmpl, out.Doc); again.Changed {
		t.Fatalf("second add must be unchanged")
	}
}

func TestAddMissingUnresolvedAnswer(t *testing.T) {
	tmpl := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 5, "assert f(1) == 1\n"),
	)
	sub := testkit.Doc(t, testkit.Plain("print('hi')\n"))
	out := apply(t, Default().AddMissing, tmpl, sub)
	if out.Changed {
		t.Fatalf("nothing can be anchored")
	}
	if out.Doc != sub {
		t.Fatalf("unchanged outcome must return the input")
	}
	for _, tag := range []string{"a1", "t1"} {
		if !out.Report.Has(change.MissingCell, tag) {
			t.Fatalf("expected MissingCell(%s):\n%s", tag, out.Report.Format())
		}
	}
	if !out.Report.Has(change.UnmatchedFunction, "a1") {
		t.Fatalf("expected UnmatchedFunction:\n%s", out.Report.Format())
	}
}

func TestAddMissingRelabelsByName(t *testing.T) {
	tmpl := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 5, "assert f(1) == 1\n"),
	)
	sub := testkit.Doc(t,
		testkit.Plain("import math\n"),
		testkit.Plain("def f(x):\n", "    return x\n"),
	)
	out := apply(t, Default().AddMissing, tmpl, sub)
	if diff := cmp.Diff([]string{"", "a1", "t1"}, testkit.Tags(out.Doc)); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if !out.Doc.Cell(1).MetadataEqual(tmpl.Cell(0)) {
		t.Fatalf("relabeled cell must carry template metadata")
	}
	if !out.Report.Has(change.Relabeled, "a1") {
		t.Fatalf("expected Relabeled:\n%s", out.Report.Format())
	}
	if again := apply(t, Default().AddMissing, tmpl, out.Doc); again.Changed {
		t.Fatalf("second add must be unchanged")
	}
}

func TestAddMissingAnchorsAfterPresentTests(t *testing.T) {
	tmpl := testkit.Doc(t,
		testkit.Test("intro", 0, "# header\n"),
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 1),
		testkit.Test("t2", 1),
	)
	sub := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 1),
		testkit.Plain("tail\n"),
	)
	out := apply(t, Default().AddMissing, tmpl, sub)
	if diff := cmp.Diff([]string{"a1", "t1", "t2", ""}, testkit.Tags(out.Doc)); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if out.Report.Len() != 0 {
		t.Fatalf("leading locked cells are not anchored:\n%s", out.Report.Format())
	}
}

func TestSyncPointsScenarioC(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Answer("q1"))
	sub := testkit.Doc(t,
		testkit.Answer("q1", "x=1"),
		testkit.Plain("between\n"),
		testkit.Answer("q1", "y=2"),
	)
	out := apply(t, SyncPoints, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	want := [][]string{{"x=1", "y=2"}, {"between\n"}}
	if diff := cmp.Diff(want, testkit.Sources(out.Doc)); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	if n := out.Report.Count(change.DuplicateTag); n != 1 {
		t.Fatalf("expected one DuplicateTag, got %d", n)
	}
	if err := testkit.CheckTagsUnique(out.Doc); err != nil {
		t.Fatal(err)
	}
	if again := apply(t, SyncPoints, tmpl, out.Doc); again.Changed {
		t.Fatalf("second fix must be unchanged")
	}
}

func TestSyncPointsScenarioD(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Answer("a"))
	sub := testkit.Doc(t, testkit.CellSpec{Tag: "a", Graded: true, Points: "3"})
	out := apply(t, SyncPoints, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	g, _ := out.Doc.Cell(0).Grading()
	if g.Graded || g.HasPoints {
		t.Fatalf("grading not cleared: %+v", g)
	}
	if err := testkit.CheckNoGradingLeak(tmpl, out.Doc); err != nil {
		t.Fatal(err)
	}
	if again := apply(t, SyncPoints, tmpl, out.Doc); again.Changed {
		t.Fatalf("second fix must be unchanged")
	}
}

func TestSyncPointsUpdatesPoints(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Test("t1", 5), testkit.Test("t2", 2))
	sub := testkit.Doc(t, testkit.Test("t1", 2))
	out := apply(t, SyncPoints, tmpl, sub)
	g, _ := out.Doc.Cell(0).Grading()
	if !out.Changed || g.Points != 5 {
		t.Fatalf("points not synced: %+v", g)
	}
	if !out.Report.Has(change.MissingCell, "t2") {
		t.Fatalf("expected MissingCell(t2):\n%s", out.Report.Format())
	}

	same := testkit.Doc(t, testkit.CellSpec{Tag: "t1", Locked: true, Graded: true, Points: "5.0"})
	if out := apply(t, SyncPoints, tmpl, same); out.Changed {
		t.Fatalf("5.0 equals 5")
	}
}

func TestSyncMetadata(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Test("t1", 5, "assert True\n"), testkit.Answer("a1"))
	sub := testkit.Doc(t, testkit.CellSpec{
		Kind:   notebook.KindMarkdown,
		Tag:    "t1",
		Points: "1",
		Source: []string{"assert True\n"},
	})
	out := apply(t, SyncMetadata, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	c := out.Doc.Cell(0)
	if c.Kind() != notebook.KindCode {
		t.Fatalf("kind not restored: %s", c.Kind())
	}
	if !c.MetadataEqual(tmpl.Cell(0)) {
		t.Fatalf("metadata not restored: %s", c.MetadataRaw())
	}
	if n, ok := c.ExecutionCount(); !ok || n != 0 || !c.HasOutputs() {
		t.Fatalf("code defaults not applied: %s", c.Raw())
	}
	if !out.Report.Has(change.MissingCell, "a1") {
		t.Fatalf("expected MissingCell(a1):\n%s", out.Report.Format())
	}
	if out.Doc.Len() != 1 {
		t.Fatalf("meta must not insert cells")
	}
	if again := apply(t, SyncMetadata, tmpl, out.Doc); again.Changed {
		t.Fatalf("second meta must be unchanged")
	}
}

func TestPrune(t *testing.T) {
	tmpl := testkit.Doc(t, testkit.Answer("a"), testkit.Answer("b"), testkit.Answer("c"))
	sub := testkit.Doc(t,
		testkit.Plain("x\n"),
		testkit.Answer("c", "c\n"),
		testkit.Answer("b", "b\n"),
		testkit.Answer("z", "z\n"),
		testkit.Answer("a", "a1\n"),
		testkit.Answer("a", "a2\n"),
	)
	out := apply(t, Prune, tmpl, sub)
	if !out.Changed {
		t.Fatalf("prune always reports a change")
	}
	if diff := cmp.Diff(tmpl.Tags(), testkit.Tags(out.Doc)); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if src := out.Doc.Cell(0).Source(); src[0] != "a1\n" {
		t.Fatalf("first cell per tag must be kept, got %v", src)
	}
	again := apply(t, Prune, tmpl, out.Doc)
	if !again.Changed {
		t.Fatalf("prune always reports a change")
	}
	if string(testkit.Encode(t, again.Doc)) != string(testkit.Encode(t, out.Doc)) {
		t.Fatalf("second prune must produce the same document")
	}
}

func TestForceMerge(t *testing.T) {
	tmpl := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 2, "assert f(1) == 1\n"),
		testkit.Test("t2", 2, "assert f(2) == 2\n"),
	)
	sub := testkit.Doc(t,
		testkit.Answer("a1", "def f(x):\n", "    return x\n"),
		testkit.Test("t1", 2, "pass\n"),
	)
	out := apply(t, ForceMerge, tmpl, sub)
	if !out.Changed {
		t.Fatalf("expected change")
	}
	if !out.Doc.Cell(1).Equal(tmpl.Cell(1)) {
		t.Fatalf("locked cell not replaced: %s", out.Doc.Cell(1).Raw())
	}
	if src := sub.Cell(1).Source(); src[0] != "pass\n" {
		t.Fatalf("input submission modified")
	}
	if !out.Report.Has(change.MissingCell, "t2") {
		t.Fatalf("expected MissingCell(t2):\n%s", out.Report.Format())
	}
	if again := apply(t, ForceMerge, tmpl, out.Doc); again.Changed {
		t.Fatalf("second force must be unchanged")
	}
}

func messyPair(t *testing.T) (*notebook.Document, *notebook.Document) {
	tmpl := testkit.Doc(t,
		testkit.Plain("# Homework\n"),
		testkit.Answer("a1", "def f(x):\n"),
		testkit.Test("t1", 2, "assert f(1) == 1\n"),
		testkit.Answer("a2", "def g(y):\n"),
		testkit.Test("t2", 3, "assert g(1) == 1\n"),
	)
	sub := testkit.Doc(t,
		testkit.Plain("def g(y):\n", "    return y\n"),
		testkit.Test("t1", 1, "assert f(1) == 1\n"),
		testkit.CellSpec{Tag: "a1", Graded: true, Points: "4", Source: []string{"def f(x):\n"}},
		testkit.Answer("a1", "    return x\n"),
		testkit.Plain("note\n"),
	)
	return tmpl, sub
}

func TestOperationsIdempotent(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			op, ok := Lookup(name)
			if !ok {
				t.Fatalf("missing operation %s", name)
			}
			tmpl, sub := messyPair(t)
			before := testkit.Encode(t, sub)

			first := apply(t, op.Apply, tmpl, sub)
			if string(testkit.Encode(t, sub)) != string(before) {
				t.Fatalf("input submission modified")
			}
			second := apply(t, op.Apply, tmpl, first.Doc)
			if name == "prune" {
				if string(testkit.Encode(t, second.Doc)) != string(testkit.Encode(t, first.Doc)) {
					t.Fatalf("second prune differs")
				}
				return
			}
			if second.Changed {
				t.Fatalf("second %s changed the document:\n%s", name, second.Report.Format())
			}
		})
	}
}
