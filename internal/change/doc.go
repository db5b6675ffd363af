// Package change records what a reconciliation did to one submission.
//
// # Data model
//
// Entry is the central record. It carries:
//
//   - Code – compact numeric identifier (see codes.go) with a stable string ID.
//   - Severity – Info, Warning or Error (severity.go).
//   - Tag – the grade_id the entry is about, when there is one.
//   - Names – declared names involved in a fallback match.
//   - Message – short human text.
//
// Report accumulates entries for one invocation in the order they were
// produced. Operations never return errors for expected drift: a missing
// cell, an unmatched function or a collapsed duplicate is an Entry, so
// callers and tests can assert on exactly what happened.
//
// Package change does no IO. Rendering for the terminal and CSV lives in the
// CLI and internal/report.
package change
