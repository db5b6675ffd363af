package reconcile

import (
	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// SyncMetadata restores cell type and metadata of every tagged cell from
// the template. Code cells also get empty outputs and a zero execution count
// when those keys are missing. Nothing is inserted or reordered.
func SyncMetadata(t, s *notebook.Document) (Outcome, error) {
	rep := change.NewReport()
	work := s.Clone()
	modified := false

	for _, tc := range t.Cells() {
		tag, ok := tc.Tag()
		if !ok {
			continue
		}
		found := false
		for _, c := range work.Cells() {
			if ct, ok := c.Tag(); !ok || ct != tag {
				continue
			}
			found = true
			touched, err := syncCell(tc, c)
			if err != nil {
				return Outcome{}, err
			}
			modified = modified || touched
		}
		if !found {
			missing(rep, tag)
		}
	}

	if !modified {
		return unchanged(s, rep), nil
	}
	return changedTo(work, rep), nil
}

func syncCell(tc, c *notebook.Cell) (bool, error) {
	touched := false
	if kind := tc.Kind(); kind != "" && c.Kind() != kind {
		if err := c.SetKind(kind); err != nil {
			return touched, err
		}
		touched = true
	}
	if !c.MetadataEqual(tc) {
		if err := c.SetMetadataFrom(tc); err != nil {
			return touched, err
		}
		touched = true
	}
	if c.Kind() != notebook.KindCode {
		return touched, nil
	}
	if !c.HasOutputs() {
		if err := c.SetOutputsEmpty(); err != nil {
			return touched, err
		}
		touched = true
	}
	if !c.HasExecutionCount() {
		if err := c.SetExecutionCountZero(); err != nil {
			return touched, err
		}
		touched = true
	}
	return touched, nil
}
