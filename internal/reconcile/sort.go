package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// SortOnly reorders the submission so cells carrying a template tag follow
// the template's tag order. All cells with a given tag move together in
// their relative order. Untagged cells and cells with unknown tags follow
// at the end, in their original relative order. No cell is dropped.
func SortOnly(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	tags := t.Tags()
	known := NewTagSet(tags)
	cells := s.Cells()

	order := make([]int, 0, len(cells))
	for _, tag := range tags {
		found := false
		for i, c := range cells {
			if ct, ok := c.Tag(); ok && ct == tag {
				order = append(order, i)
				found = true
			}
		}
		if !found {
			missing(rep, tag)
		}
	}
	for i, c := range cells {
		if ct, ok := c.Tag(); ok && known.Has(ct) {
			continue
		}
		order = append(order, i)
	}

	if isIdentity(order) {
		return unchanged(s, rep), nil
	}
	work := s.Clone()
	cloned := work.Cells()
	sorted := make([]*notebook.Cell, len(order))
	for to, from := range order {
		sorted[to] = cloned[from]
	}
	work.SetCells(sorted)
	return changedTo(work, rep), nil
}

// Prune rebuilds the submission from the template's tag order: the first
// cell carrying each template tag is kept, everything else is discarded.
// The outcome is always reported as changed.
func Prune(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	work := s.Clone()
	cells := work.Cells()

	kept := make([]*notebook.Cell, 0, len(cells))
	for _, tag := range t.Tags() {
		i := IndexOfTag(cells, tag)
		if i < 0 {
			missing(rep, tag)
			continue
		}
		kept = append(kept, cells[i])
	}
	work.SetCells(kept)
	return changedTo(work, rep), nil
}

func isIdentity(order []int) bool {
	for i, v := range order {
		if i != v {
			return false
		}
	}
	return true
}
