package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// AddMissing reinserts locked template cells that the submission lost.
//
// Template cells are walked in order while an anchor tracks the submission
// position of the most recently resolved answer cell. A missing locked cell
// is inserted right after the anchor and becomes the new anchor, so test
// cells land next to their answer cell rather than at the end. A locked cell
// already present moves the anchor forward to itself. Locked cells that
// precede every answer cell are not anchored and are left alone.
func (e *Engine) AddMissing(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	work := s.Clone()
	cells := work.Cells()
	modified := false

	reserved := NewTagSet(t.Tags())
	anchor := -1
	seenAnswer := false
	for _, tc := range t.Cells() {
		g, ok := tc.Grading()
		if !ok {
			continue
		}
		if g.Answer() {
			seenAnswer = true
			m, relabeled, err := e.Matcher.Resolve(tc, cells, reserved, rep)
			if err != nil {
				return Outcome{}, err
			}
			modified = modified || relabeled
			if !m.Found() {
				anchor = -1
				if g.HasTag {
					rep.MissingCell(g.Tag)
				}
				rep.UnmatchedFunction(g.Tag, m.Names)
				continue
			}
			anchor = m.Index
			continue
		}

		if !seenAnswer || !g.HasTag {
			continue
		}
		if i := IndexOfTag(cells, g.Tag); i >= 0 {
			if anchor >= 0 && i > anchor {
				anchor = i
			}
			continue
		}
		if anchor < 0 {
			rep.MissingCell(g.Tag)
			continue
		}
		cells = insertAt(cells, anchor+1, tc.Clone())
		anchor++
		modified = true
	}

	if !modified {
		return unchanged(s, rep), nil
	}
	work.SetCells(cells)
	return changedTo(work, rep), nil
}

func insertAt(cells []*notebook.Cell, i int, c *notebook.Cell) []*notebook.Cell {
	out := make([]*notebook.Cell, 0, len(cells)+1)
	out = append(out, cells[:i]...)
	out = append(out, c)
	return append(out, cells[i:]...)
}
