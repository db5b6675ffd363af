// Package stage writes force-merged notebooks to a side directory and runs
// them through an external executor.
package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"nbmend/internal/notebook"
)

// Executor runs a staged notebook in place.
type Executor interface {
	Execute(ctx context.Context, path string) error
}

// Area is a staging directory laid out as <dir>/<owner>/<assignment>/<notebook>.
type Area struct {
	Dir string
}

// Path returns where the notebook of owner is staged.
func (a Area) Path(owner, assignment, nb string) string {
	return filepath.Join(a.Dir, owner, assignment, nb)
}

// Write saves doc under the staging path of owner and returns the path.
func (a Area) Write(doc *notebook.Document, owner, assignment, nb string) (string, error) {
	if a.Dir == "" {
		return "", fmt.Errorf("staging directory not configured")
	}
	path := a.Path(owner, assignment, nb)
	if err := doc.Save(path); err != nil {
		return path, err
	}
	return path, nil
}
