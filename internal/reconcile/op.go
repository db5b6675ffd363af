package reconcile

import (
	"slices"

	"nbmend/internal/change"
	"nbmend/internal/extract"
	"nbmend/internal/notebook"
)

// Outcome is the result of one operation. Changed false is the unchanged
// sentinel: Doc is then the submission that was passed in.
type Outcome struct {
	Doc     *notebook.Document
	Changed bool
	Report  *change.Report
}

func unchanged(s *notebook.Document, rep *change.Report) Outcome {
	return Outcome{Doc: s, Report: rep}
}

func changedTo(doc *notebook.Document, rep *change.Report) Outcome {
	return Outcome{Doc: doc, Changed: true, Report: rep}
}

// Target says where the driver persists a changed outcome.
type Target uint8

const (
	// InPlace overwrites the submission file.
	InPlace Target = iota
	// Staging writes to the staging area and leaves the submission alone.
	Staging
)

func (t Target) String() string {
	if t == Staging {
		return "staging"
	}
	return "in-place"
}

// ApplyFunc runs one operation. Errors are faults of the document encoding,
// never reconciliation findings.
type ApplyFunc func(t, s *notebook.Document) (Outcome, error)

// Operation is a named reconciliation operation. Variant is set when the
// outcome depends on engine settings beyond the two documents.
type Operation struct {
	Name    string
	Usage   string
	Apply   ApplyFunc
	Target  Target
	Variant string
}

// Key identifies the operation together with its variant, e.g.
// "add:keyword=def".
func (op Operation) Key() string {
	if op.Variant == "" {
		return op.Name
	}
	return op.Name + ":" + op.Variant
}

// Engine holds the collaborators shared by all operations.
type Engine struct {
	Matcher Matcher
}

// New returns an engine using ex for fallback matching.
func New(ex extract.Extractor) *Engine {
	return &Engine{Matcher: NewMatcher(ex)}
}

// Default returns an engine with the default keyword extractor.
func Default() *Engine {
	return New(extract.Default())
}

// Operations lists the operations of e keyed by name.
func (e *Engine) Operations() map[string]Operation {
	return map[string]Operation{
		"add":   {Name: "add", Usage: "insert missing test cells after their answer cells", Apply: e.AddMissing, Variant: extract.ID(e.Matcher.Extractor)},
		"fix":   {Name: "fix", Usage: "sync points, demote answer cells and merge duplicate cells", Apply: SyncPoints},
		"meta":  {Name: "meta", Usage: "sync cell type and metadata of tagged cells", Apply: SyncMetadata},
		"sort":  {Name: "sort", Usage: "reorder tagged cells into template order", Apply: SortOnly},
		"prune": {Name: "prune", Usage: "keep only template-tagged cells, in template order", Apply: Prune},
		"force": {Name: "force", Usage: "replace locked cells with the template's and stage the result", Apply: ForceMerge, Target: Staging},
	}
}

// Lookup returns the operation called name.
func (e *Engine) Lookup(name string) (Operation, bool) {
	op, ok := e.Operations()[name]
	return op, ok
}

// Lookup returns the operation called name on the default engine.
func Lookup(name string) (Operation, bool) {
	return Default().Lookup(name)
}

// Names returns the registered operation names, sorted.
func Names() []string {
	ops := Default().Operations()
	out := make([]string, 0, len(ops))
	for name := range ops {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
