package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// SyncPoints repairs grading fields and collapses duplicate cells.
//
// Three passes run in order. Every template cell carrying points has the
// points copied onto each submission cell with its tag. Every template
// answer cell without points demotes its submission counterparts: grade is
// cleared and points removed. Finally, later cells repeating a tag have their
// source appended to the first cell with that tag and are dropped.
func SyncPoints(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	work := s.Clone()
	cells := work.Cells()
	modified := false

	for _, tc := range t.Cells() {
		g, ok := tc.Grading()
		if !ok || !g.HasTag || !g.HasPoints {
			continue
		}
		found := false
		for _, c := range cells {
			cg, ok := c.Grading()
			if !ok || cg.Tag != g.Tag {
				continue
			}
			found = true
			if cg.SamePoints(g) {
				continue
			}
			if err := c.SetPointsFrom(g); err != nil {
				return Outcome{}, err
			}
			modified = true
		}
		if !found {
			missing(rep, g.Tag)
		}
	}

	for _, tc := range t.Cells() {
		g, ok := tc.Grading()
		if !ok || !g.HasTag || g.Locked || g.Graded || g.HasPoints {
			continue
		}
		found := false
		for _, c := range cells {
			if tag, ok := c.Tag(); !ok || tag != g.Tag {
				continue
			}
			found = true
			cleared, err := c.ClearGrade()
			if err != nil {
				return Outcome{}, err
			}
			modified = modified || cleared
		}
		if !found {
			missing(rep, g.Tag)
		}
	}

	merged, collapsed, err := collapseDuplicates(cells, rep)
	if err != nil {
		return Outcome{}, err
	}
	if !modified && !collapsed {
		return unchanged(s, rep), nil
	}
	work.SetCells(merged)
	return changedTo(work, rep), nil
}

// collapseDuplicates keeps the first cell of every tag in place and appends
// the source of each later cell with the same tag to it.
func collapseDuplicates(cells []*notebook.Cell, rep *change.Report) ([]*notebook.Cell, bool, error) {
	first := make(map[string]*notebook.Cell, len(cells))
	out := make([]*notebook.Cell, 0, len(cells))
	collapsed := false
	for _, c := range cells {
		tag, ok := c.Tag()
		if !ok {
			out = append(out, c)
			continue
		}
		canon, dup := first[tag]
		if !dup {
			first[tag] = c
			out = append(out, c)
			continue
		}
		if err := canon.AppendSource(c.Source()); err != nil {
			return nil, false, err
		}
		rep.DuplicateTag(tag)
		collapsed = true
	}
	return out, collapsed, nil
}

// missing records tag once per report.
func missing(rep *change.Report, tag string) {
	if !rep.Has(change.MissingCell, tag) {
		rep.MissingCell(tag)
	}
}
