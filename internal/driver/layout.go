package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Default directory names inside a course.
const (
	DirSource    = "source"
	DirSubmitted = "submitted"
	DirStage     = "nbmend-autograde"
	DirReports   = "reports"
	NotebookExt  = ".ipynb"
)

// Layout locates the parts of a course on disk:
//
//	<course>/<step>/<owner>/<assignment>/<notebook>
type Layout struct {
	CourseDir    string
	SourceDir    string
	SubmittedDir string
	StageDir     string
	ReportDir    string
}

// NewLayout fills unset directories from course.
func NewLayout(course string) Layout {
	return Layout{CourseDir: course}.WithDefaults()
}

// WithDefaults fills unset directories relative to CourseDir.
func (l Layout) WithDefaults() Layout {
	if l.CourseDir == "" {
		l.CourseDir = "."
	}
	if l.SourceDir == "" {
		l.SourceDir = filepath.Join(l.CourseDir, DirSource)
	}
	if l.SubmittedDir == "" {
		l.SubmittedDir = filepath.Join(l.CourseDir, DirSubmitted)
	}
	if l.StageDir == "" {
		l.StageDir = filepath.Join(l.CourseDir, DirStage)
	}
	if l.ReportDir == "" {
		l.ReportDir = filepath.Join(l.CourseDir, DirReports)
	}
	return l
}

// TemplatePath returns <source>/<assignment>/<notebook>.
func (l Layout) TemplatePath(assignment, nb string) string {
	return filepath.Join(l.SourceDir, assignment, nb)
}

// ReportPath returns <reports>/<assignment>/<kind>-<notebook stem>.csv.
func (l Layout) ReportPath(assignment, kind, nb string) string {
	stem := strings.TrimSuffix(nb, filepath.Ext(nb))
	return filepath.Join(l.ReportDir, assignment, kind+"-"+stem+".csv")
}

// SourceNotebooks lists the notebook file names of an assignment's source
// folder, sorted.
func (l Layout) SourceNotebooks(assignment string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.SourceDir, assignment))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == NotebookExt {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// OwnerOf returns the owner segment of a submission path, the directory two
// levels above the file.
func OwnerOf(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}

// Item is one submission document.
type Item struct {
	Owner string
	Path  string
	// Err is set when the walk could not read the owner's folder. The item
	// then fails at load without touching the file.
	Err error
}

// Selector filters owners by doublestar patterns. An empty selector
// accepts everyone.
type Selector []string

// Validate reports the first malformed pattern.
func (s Selector) Validate() error {
	for _, p := range s {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid --select pattern %q", p)
		}
	}
	return nil
}

// Match reports whether owner is selected.
func (s Selector) Match(owner string) bool {
	if len(s) == 0 {
		return true
	}
	for _, p := range s {
		if ok, err := doublestar.Match(p, owner); err == nil && ok {
			return true
		}
	}
	return false
}

var walkDir = filepath.WalkDir

// Discover walks root in lexical order and returns every file named nb
// whose parent folder is assignment and whose owner is selected. A folder
// that cannot be read yields an item carrying the error instead of failing
// the walk; only an unreadable root is fatal.
func Discover(root, assignment, nb string, sel Selector) ([]Item, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	var items []Item
	err = walkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if it, ok := unreadableItem(root, path, assignment, nb); ok && sel.Match(it.Owner) {
				it.Err = err
				items = append(items, it)
			}
			return nil
		}
		if d.IsDir() || d.Name() != nb {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != assignment {
			return nil
		}
		owner := OwnerOf(path)
		if !sel.Match(owner) {
			return nil
		}
		items = append(items, Item{Owner: owner, Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// unreadableItem maps a path the walk failed on to the submission it may
// hide. Paths outside owner/assignment/nb are not reported.
func unreadableItem(root, path, assignment, nb string) (Item, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Item{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(parts) == 1:
	case len(parts) == 2 && parts[1] == assignment:
	case len(parts) == 3 && parts[1] == assignment && parts[2] == nb:
	default:
		return Item{}, false
	}
	return Item{Owner: parts[0], Path: filepath.Join(root, parts[0], assignment, nb)}, true
}
