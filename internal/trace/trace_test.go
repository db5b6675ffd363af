package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, in := range []string{"off", "phase", "DETAIL", "debug"} {
		if _, err := ParseLevel(in); err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeStage) || LevelPhase.ShouldEmit(ScopeNotebook) {
		t.Fatalf("phase level must stop at stage scope")
	}
	if !LevelDetail.ShouldEmit(ScopeNotebook) || LevelDetail.ShouldEmit(ScopeCell) {
		t.Fatalf("detail level must stop at notebook scope")
	}
	if LevelOff.ShouldEmit(ScopeBatch) {
		t.Fatalf("off emits nothing")
	}
}

func TestStartNestsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := Start(ctx, ScopeBatch, "batch")
	_, inner := Start(ctx, ScopeNotebook, "notebook")
	inner.WithExtra("owner", "alice").End("")
	outer.End("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != "end" || ev.Name != "notebook" || ev.ParentID != outer.ID() || ev.Extra["owner"] != "alice" {
		t.Fatalf("unexpected inner end event %+v", ev)
	}
}

func TestNopIsDefault(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx).Enabled() {
		t.Fatalf("default tracer must be disabled")
	}
	_, sp := Start(ctx, ScopeBatch, "x")
	if sp.End("") != 0 {
		t.Fatalf("nop span must report zero duration")
	}
}

func TestPointParentsToEnclosingSpan(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))
	ctx, sp := Start(ctx, ScopeNotebook, "notebook")
	Point(ctx, ScopeNotebook, "cache-hit", "alice")

	var ev jsonEvent
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Name != "cache-hit" || ev.ParentID != sp.ID() {
		t.Fatalf("unexpected point %+v", ev)
	}
	if WithTracer(context.Background(), nil) == nil || FromContext(WithTracer(context.Background(), nil)).Enabled() {
		t.Fatalf("nil tracer must fall back to Nop")
	}
}

func TestTextFormatSortsExtra(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	sp := Begin(tr, ScopeStage, "write", 0)
	sp.WithExtra("b", "2").WithExtra("a", "1").End("ok")
	out := buf.String()
	if !strings.Contains(out, "stage:write (ok) {a=1, b=2}") {
		t.Fatalf("unexpected text output:\n%s", out)
	}
}
