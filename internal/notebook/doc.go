// Package notebook models the on-disk notebook document consumed and
// produced by the reconciliation engine.
//
// # Encoding
//
// A document is a JSON object with a "cells" array. Each cell carries
// "cell_type", "source", "metadata" and, for code cells, "outputs" and
// "execution_count". Grading information lives in the "nbgrader" metadata
// namespace ("grade_id", "locked", "grade", "points").
//
// Cells keep their raw JSON bytes. Accessors read fields through gjson and
// report presence explicitly; mutators rewrite exactly one field through
// sjson so every other key keeps its bytes and its position. Documents are
// re-indented with one space per level on save, which is how the grading
// tools write them.
//
// # Ownership
//
// A Document is owned by whoever loaded it. Nothing in this package shares
// cells between documents: use Clone when a cell has to be copied into
// another document.
package notebook
