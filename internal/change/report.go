package change

import (
	"fmt"
	"strings"
)

// Report accumulates entries in production order.
type Report struct {
	items []Entry
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{items: make([]Entry, 0, 4)}
}

// Add appends an entry, filling in the default severity and message.
func (r *Report) Add(e Entry) {
	if r == nil {
		return
	}
	if e.Message == "" {
		e.Message = e.Code.Title()
	}
	r.items = append(r.items, e)
}

// MissingCell records a template tag absent from the submission.
func (r *Report) MissingCell(tag string) {
	r.Add(Entry{
		Code:     MissingCell,
		Severity: MissingCell.DefaultSeverity(),
		Tag:      tag,
		Message:  fmt.Sprintf("submission is missing cell %q", tag),
	})
}

// UnmatchedFunction records a failed fallback match.
func (r *Report) UnmatchedFunction(tag string, names []string) {
	msg := "no function found in template cell"
	if len(names) > 0 {
		msg = fmt.Sprintf("student function not found: %s", strings.Join(names, ", "))
	}
	r.Add(Entry{
		Code:     UnmatchedFunction,
		Severity: UnmatchedFunction.DefaultSeverity(),
		Tag:      tag,
		Names:    append([]string(nil), names...),
		Message:  msg,
	})
}

// DuplicateTag records one collapsed duplicate cell.
func (r *Report) DuplicateTag(tag string) {
	r.Add(Entry{
		Code:     DuplicateTag,
		Severity: DuplicateTag.DefaultSeverity(),
		Tag:      tag,
		Message:  fmt.Sprintf("duplicate cell %q merged into the first one", tag),
	})
}

// Relabeled records metadata restored through a fallback match.
func (r *Report) Relabeled(tag string, names []string) {
	r.Add(Entry{
		Code:     Relabeled,
		Severity: Relabeled.DefaultSeverity(),
		Tag:      tag,
		Names:    append([]string(nil), names...),
		Message:  fmt.Sprintf("cell declaring %s relabeled as %q", strings.Join(names, ", "), tag),
	})
}

// Failure records a storage or collaborator fault.
func (r *Report) Failure(code Code, err error) {
	r.Add(Entry{
		Code:     code,
		Severity: SevError,
		Message:  err.Error(),
	})
}

func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Items returns the entries. The slice must not be modified.
func (r *Report) Items() []Entry {
	if r == nil {
		return nil
	}
	return r.items
}

// Count returns the number of entries with the code.
func (r *Report) Count(code Code) int {
	n := 0
	for _, e := range r.Items() {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether an entry with code and tag exists.
func (r *Report) Has(code Code, tag string) bool {
	for _, e := range r.Items() {
		if e.Code == code && e.Tag == tag {
			return true
		}
	}
	return false
}

// HasErrors returns true if any entry has Severity >= Error.
func (r *Report) HasErrors() bool {
	for _, e := range r.Items() {
		if e.Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any entry has Severity >= Warning.
func (r *Report) HasWarnings() bool {
	for _, e := range r.Items() {
		if e.Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Merge appends the entries of other.
func (r *Report) Merge(other *Report) {
	if r == nil || other == nil {
		return
	}
	r.items = append(r.items, other.items...)
}

// Restore replaces the entries, used when a cached outcome is replayed.
func (r *Report) Restore(items []Entry) {
	r.items = append(r.items[:0], items...)
}
