// Package testkit builds notebook fixtures and checks document invariants
// in tests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"nbmend/internal/notebook"
)

// CellSpec describes a fixture cell.
type CellSpec struct {
	Kind      notebook.Kind
	Tag       string
	Locked    bool
	Graded    bool
	Points    string // JSON literal, "" for none
	Source    []string
	NoGrading bool
}

type gradingJSON struct {
	Grade   bool            `json:"grade"`
	GradeID string          `json:"grade_id,omitempty"`
	Locked  bool            `json:"locked"`
	Points  json.RawMessage `json:"points,omitempty"`
	Schema  int             `json:"schema_version"`
	Solve   bool            `json:"solution"`
}

type metaJSON struct {
	NBGrader *gradingJSON `json:"nbgrader,omitempty"`
}

type codeCellJSON struct {
	Kind      notebook.Kind     `json:"cell_type"`
	ExecCount *int              `json:"execution_count"`
	Metadata  metaJSON          `json:"metadata"`
	Outputs   []json.RawMessage `json:"outputs"`
	Source    []string          `json:"source"`
}

type textCellJSON struct {
	Kind     notebook.Kind `json:"cell_type"`
	Metadata metaJSON      `json:"metadata"`
	Source   []string      `json:"source"`
}

// RawCell renders cs as cell JSON in nbformat key order.
func RawCell(cs CellSpec) []byte {
	kind := cs.Kind
	if kind == "" {
		kind = notebook.KindCode
	}
	src := cs.Source
	if src == nil {
		src = []string{}
	}
	var meta metaJSON
	if !cs.NoGrading {
		g := &gradingJSON{
			Grade:   cs.Graded,
			GradeID: cs.Tag,
			Locked:  cs.Locked,
			Schema:  3,
			Solve:   !cs.Locked,
		}
		if cs.Points != "" {
			g.Points = json.RawMessage(cs.Points)
		}
		meta.NBGrader = g
	}
	var v any
	if kind == notebook.KindCode {
		v = codeCellJSON{Kind: kind, Metadata: meta, Outputs: []json.RawMessage{}, Source: src}
	} else {
		v = textCellJSON{Kind: kind, Metadata: meta, Source: src}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("testkit: encode cell: %v", err))
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// RawDoc renders a notebook document around the cells.
func RawDoc(cells ...CellSpec) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"cells":[`)
	for i, s := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(RawCell(s))
	}
	buf.WriteString(`],"metadata":{"kernelspec":{"display_name":"Python 3","language":"python","name":"python3"}},"nbformat":4,"nbformat_minor":2}`)
	return buf.Bytes()
}

// Doc parses RawDoc(cells...) and fails the test on error.
func Doc(tb testing.TB, cells ...CellSpec) *notebook.Document {
	tb.Helper()
	doc, err := notebook.Parse(RawDoc(cells...))
	if err != nil {
		tb.Fatalf("testkit: parse fixture: %v", err)
	}
	return doc
}

// Answer is an unlocked, ungraded answer cell.
func Answer(tag string, source ...string) CellSpec {
	return CellSpec{Tag: tag, Source: source}
}

// Test is a locked test cell worth points.
func Test(tag string, points float64, source ...string) CellSpec {
	return CellSpec{
		Tag:    tag,
		Locked: true,
		Graded: true,
		Points: strconv.FormatFloat(points, 'f', -1, 64),
		Source: source,
	}
}

// Plain is a code cell without grading metadata.
func Plain(source ...string) CellSpec {
	return CellSpec{NoGrading: true, Source: source}
}

// Tags lists the grade_id of every cell, "" for untagged cells.
func Tags(doc *notebook.Document) []string {
	out := make([]string, 0, doc.Len())
	for _, c := range doc.Cells() {
		tag, _ := c.Tag()
		out = append(out, tag)
	}
	return out
}

// Sources lists the source of every cell.
func Sources(doc *notebook.Document) [][]string {
	out := make([][]string, 0, doc.Len())
	for _, c := range doc.Cells() {
		out = append(out, c.Source())
	}
	return out
}

// Encode renders doc and fails the test on error.
func Encode(tb testing.TB, doc *notebook.Document) []byte {
	tb.Helper()
	data, err := doc.Encode()
	if err != nil {
		tb.Fatalf("testkit: encode: %v", err)
	}
	return data
}
