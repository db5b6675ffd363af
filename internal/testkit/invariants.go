package testkit

import (
	"fmt"

	"nbmend/internal/notebook"
)

// CheckTagsUnique verifies that no two cells share a grade_id.
func CheckTagsUnique(doc *notebook.Document) error {
	seen := make(map[string]int, doc.Len())
	for i, c := range doc.Cells() {
		tag, ok := c.Tag()
		if !ok {
			continue
		}
		if first, dup := seen[tag]; dup {
			return fmt.Errorf("tag %q at cells %d and %d", tag, first, i)
		}
		seen[tag] = i
	}
	return nil
}

// CheckOrder verifies that cells whose tag appears in the template follow
// the template's tag order.
func CheckOrder(template, doc *notebook.Document) error {
	rank := make(map[string]int)
	for i, tag := range template.Tags() {
		rank[tag] = i
	}
	last := -1
	for i, c := range doc.Cells() {
		tag, ok := c.Tag()
		if !ok {
			continue
		}
		r, known := rank[tag]
		if !known {
			continue
		}
		if r < last {
			return fmt.Errorf("cell %d (%q) is out of template order", i, tag)
		}
		last = r
	}
	return nil
}

// CheckNoGradingLeak verifies that cells whose template counterpart is an
// ungraded answer carry neither grade=true nor points.
func CheckNoGradingLeak(template, doc *notebook.Document) error {
	answers := make(map[string]struct{})
	for _, c := range template.Cells() {
		g, ok := c.Grading()
		if ok && g.HasTag && !g.Locked && !g.Graded && !g.HasPoints {
			answers[g.Tag] = struct{}{}
		}
	}
	for i, c := range doc.Cells() {
		g, ok := c.Grading()
		if !ok || !g.HasTag {
			continue
		}
		if _, isAnswer := answers[g.Tag]; !isAnswer {
			continue
		}
		if g.Graded || g.HasPoints {
			return fmt.Errorf("cell %d (%q) leaks grading", i, g.Tag)
		}
	}
	return nil
}
