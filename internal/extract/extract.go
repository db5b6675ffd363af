// Package extract pulls declared procedure names out of cell source text.
//
// The heuristic is syntactic and tied to one source convention: a line that
// contains the declaration keyword followed by a space is split on single
// spaces, and the token after the keyword, cut at the first parenthesis, is
// the declared name. It can both over- and under-match. Callers use it only
// as a fallback when a cell has lost its grading tag.
package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultKeyword is the declaration keyword of the notebooks' language.
const DefaultKeyword = "def"

// Extractor returns the names declared in a cell's source lines.
type Extractor interface {
	Names(lines []string) []string
}

// Keyword extracts names following a declaration keyword.
type Keyword struct {
	Word string
}

// Default returns the extractor for DefaultKeyword.
func Default() Keyword {
	return Keyword{Word: DefaultKeyword}
}

// Names returns the declared names in first-seen order, each once.
// Names are NFKC-normalised, matching how identifiers are compared by the
// notebooks' interpreter.
func (k Keyword) Names(lines []string) []string {
	word := k.Word
	if word == "" {
		word = DefaultKeyword
	}
	marker := word + " "

	var names []string
	seen := make(map[string]struct{})
	for _, line := range lines {
		if !strings.Contains(line, marker) {
			continue
		}
		name, ok := nameAfter(strings.Split(line, " "), word)
		if !ok {
			continue
		}
		name = norm.NFKC.String(name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// nameAfter finds the first token equal to word and returns the token after
// it, truncated at "(". Lines such as "undef x" contain the marker but no
// standalone keyword token and yield nothing.
func nameAfter(tokens []string, word string) (string, bool) {
	for i, tok := range tokens {
		if tok != word || i+1 >= len(tokens) {
			continue
		}
		name, _, _ := strings.Cut(tokens[i+1], "(")
		name = strings.TrimSpace(name)
		if name == "" {
			return "", false
		}
		return name, true
	}
	return "", false
}

// Disabled never finds a name, which turns fallback matching off.
type Disabled struct{}

// Names always returns nil.
func (Disabled) Names([]string) []string { return nil }

// ID names the extractor's configuration, such as "keyword=def" or
// "disabled". Results produced under different IDs may differ.
func ID(ex Extractor) string {
	switch ex := ex.(type) {
	case nil, Disabled:
		return "disabled"
	case Keyword:
		if ex.Word == "" {
			return "keyword=" + DefaultKeyword
		}
		return "keyword=" + ex.Word
	default:
		return fmt.Sprintf("%T", ex)
	}
}

// Intersects reports whether a and b share a name.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}
