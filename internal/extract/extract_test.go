package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeywordNames(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "single definition",
			lines: []string{"def fib(n):\n", "    return n\n"},
			want:  []string{"fib"},
		},
		{
			name:  "indented and nested",
			lines: []string{"def outer(a):\n", "    def inner(b):\n", "        return b\n", "    return inner(a)\n"},
			want:  []string{"outer", "inner"},
		},
		{
			name:  "no parenthesis",
			lines: []string{"def helper\n"},
			want:  []string{"helper"},
		},
		{
			name:  "repeated name kept once",
			lines: []string{"def f(x):\n", "    pass\n", "def f(x, y):\n"},
			want:  []string{"f"},
		},
		{
			name:  "keyword inside another word",
			lines: []string{"undef x\n", "x = 1\n"},
			want:  nil,
		},
		{
			name:  "no definitions",
			lines: []string{"# YOUR CODE HERE\n", "raise NotImplementedError()"},
			want:  nil,
		},
		{
			name:  "compatibility characters normalised",
			lines: []string{"def ﬁnd(x):\n"},
			want:  []string{"find"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Default().Names(tc.lines)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeywordCustomWord(t *testing.T) {
	k := Keyword{Word: "function"}
	got := k.Names([]string{"function area(r) {\n", "def ignored(x):\n"})
	if diff := cmp.Diff([]string{"area"}, got); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestDisabled(t *testing.T) {
	if got := (Disabled{}).Names([]string{"def f():\n"}); got != nil {
		t.Fatalf("expected no names, got %v", got)
	}
}

func TestIntersects(t *testing.T) {
	if !Intersects([]string{"a", "b"}, []string{"c", "b"}) {
		t.Fatalf("expected intersection")
	}
	if Intersects([]string{"a"}, []string{"b"}) {
		t.Fatalf("unexpected intersection")
	}
	if Intersects(nil, []string{"a"}) {
		t.Fatalf("empty set must not intersect")
	}
}

func TestID(t *testing.T) {
	cases := map[string]Extractor{
		"keyword=def":      Default(),
		"keyword=function": Keyword{Word: "function"},
		"disabled":         Disabled{},
	}
	for want, ex := range cases {
		if got := ID(ex); got != want {
			t.Fatalf("ID(%#v) = %q, want %q", ex, got, want)
		}
	}
	if ID(Keyword{}) != ID(Default()) {
		t.Fatalf("empty keyword must share the default ID")
	}
	if ID(nil) != "disabled" {
		t.Fatalf("nil extractor disables matching")
	}
}
