package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/extract"
	"nbmend/internal/notebook"
)

// By tells how a template cell was resolved.
type By uint8

const (
	NotFound By = iota
	ByTag
	ByName
)

func (b By) String() string {
	switch b {
	case ByTag:
		return "tag"
	case ByName:
		return "name"
	default:
		return "not-found"
	}
}

// Match is the result of resolving one template cell.
type Match struct {
	Index int
	By    By
	// Names declared by the template cell, filled when the fallback ran.
	Names []string
}

// Found reports whether a submission cell was resolved.
func (m Match) Found() bool { return m.By != NotFound }

// Matcher resolves template cells to submission cells.
type Matcher struct {
	Extractor extract.Extractor
}

// NewMatcher returns a matcher using ex for the fallback; nil disables it.
func NewMatcher(ex extract.Extractor) Matcher {
	if ex == nil {
		ex = extract.Disabled{}
	}
	return Matcher{Extractor: ex}
}

// IndexOfTag returns the index of the first cell tagged tag, or -1.
func IndexOfTag(cells []*notebook.Cell, tag string) int {
	for i, c := range cells {
		if t, ok := c.Tag(); ok && t == tag {
			return i
		}
	}
	return -1
}

// TagSet is a set of cell tags.
type TagSet map[string]struct{}

// NewTagSet returns the set of tags.
func NewTagSet(tags []string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Find resolves tc against cells without modifying anything. The tag lookup
// runs first. The declared-name fallback runs when tc has no tag, or when tc
// is an answer cell whose tag is missing from cells. The lowest index wins.
func (m Matcher) Find(tc *notebook.Cell, cells []*notebook.Cell) Match {
	return m.find(tc, cells, nil)
}

// find is Find with the fallback skipping cells whose tag is in reserved.
func (m Matcher) find(tc *notebook.Cell, cells []*notebook.Cell, reserved TagSet) Match {
	g, hasGrading := tc.Grading()
	if hasGrading && g.HasTag {
		if i := IndexOfTag(cells, g.Tag); i >= 0 {
			return Match{Index: i, By: ByTag}
		}
		if g.Locked {
			return Match{Index: -1, By: NotFound}
		}
	}

	ex := m.Extractor
	if ex == nil {
		ex = extract.Disabled{}
	}
	names := ex.Names(tc.Source())
	if len(names) == 0 {
		return Match{Index: -1, By: NotFound}
	}
	for i, c := range cells {
		if tag, ok := c.Tag(); ok && reserved.Has(tag) {
			continue
		}
		if extract.Intersects(names, ex.Names(c.Source())) {
			return Match{Index: i, By: ByName, Names: names}
		}
	}
	return Match{Index: -1, By: NotFound, Names: names}
}

// Resolve is Find followed by relabeling: a cell matched by name gets the
// template cell's metadata wholesale. The fallback never claims a cell
// already carrying a reserved tag. changed reports whether the submission
// cell was rewritten; every rewrite is recorded in rep.
func (m Matcher) Resolve(tc *notebook.Cell, cells []*notebook.Cell, reserved TagSet, rep *change.Report) (match Match, changed bool, err error) {
	match = m.find(tc, cells, reserved)
	if match.By != ByName {
		return match, false, nil
	}
	target := cells[match.Index]
	if target.MetadataEqual(tc) {
		return match, false, nil
	}
	if err := target.SetMetadataFrom(tc); err != nil {
		return match, false, err
	}
	tag, _ := tc.Tag()
	rep.Relabeled(tag, match.Names)
	return match, true, nil
}
