// Package reconcile aligns a submission notebook with its template.
//
// Every operation takes the template and the submission and returns an
// Outcome. The submission passed in is never modified: operations work on a
// clone, rebuild its cell list and hand the clone back only when something
// changed. Non-fatal findings (missing cells, unmatched functions, collapsed
// duplicates, relabeled cells) are recorded in the Outcome's change report.
package reconcile
