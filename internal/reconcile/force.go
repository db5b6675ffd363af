package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// ForceMerge replaces each submission cell matching a locked template cell
// with a copy of the template cell. The driver stages the result instead of
// overwriting the submission, so Changed only tells whether any replaced
// cell differed.
func ForceMerge(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	work := s.Clone()
	cells := work.Cells()
	modified := false

	for _, tc := range t.Cells() {
		g, ok := tc.Grading()
		if !ok || !g.Locked || !g.HasTag {
			continue
		}
		i := IndexOfTag(cells, g.Tag)
		if i < 0 {
			missing(rep, g.Tag)
			continue
		}
		if cells[i].Equal(tc) {
			continue
		}
		cells[i] = tc.Clone()
		modified = true
	}

	if !modified {
		return unchanged(s, rep), nil
	}
	work.SetCells(cells)
	return changedTo(work, rep), nil
}
