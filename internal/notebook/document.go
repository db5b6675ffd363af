package notebook

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNotNotebook is returned when the bytes are not a JSON object with a
// cells array.
var ErrNotNotebook = errors.New("not a notebook document")

// Digest is a SHA-256 of an encoded document.
type Digest [32]byte

// Document is an ordered list of cells plus the untouched top-level object.
type Document struct {
	raw   []byte
	cells []*Cell
}

// Parse decodes a document. A leading UTF-8 BOM is ignored.
func Parse(data []byte) (*Document, error) {
	data = removeBOM(data)
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotNotebook)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrNotNotebook)
	}
	list := root.Get("cells")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: missing cells array", ErrNotNotebook)
	}
	doc := &Document{raw: append([]byte(nil), data...)}
	for i, item := range list.Array() {
		cell, err := NewCell([]byte(item.Raw))
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrNotNotebook, i, err)
		}
		doc.cells = append(doc.cells, cell)
	}
	return doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Len returns the number of cells.
func (d *Document) Len() int {
	return len(d.cells)
}

// Cell returns the i-th cell.
func (d *Document) Cell(i int) *Cell {
	return d.cells[i]
}

// Cells returns a copy of the cell list. The cells themselves are shared.
func (d *Document) Cells() []*Cell {
	out := make([]*Cell, len(d.cells))
	copy(out, d.cells)
	return out
}

// SetCells replaces the cell list.
func (d *Document) SetCells(cells []*Cell) {
	d.cells = append([]*Cell(nil), cells...)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		raw:   append([]byte(nil), d.raw...),
		cells: make([]*Cell, len(d.cells)),
	}
	for i, c := range d.cells {
		out.cells[i] = c.Clone()
	}
	return out
}

// Tags returns the grade_id values in first-appearance order, each once.
func (d *Document) Tags() []string {
	seen := make(map[string]struct{}, len(d.cells))
	tags := make([]string, 0, len(d.cells))
	for _, c := range d.cells {
		tag, ok := c.Tag()
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Encode renders the document in its on-disk form.
func (d *Document) Encode() ([]byte, error) {
	var list bytes.Buffer
	list.WriteByte('[')
	for i, c := range d.cells {
		if i > 0 {
			list.WriteByte(',')
		}
		list.Write(c.raw)
	}
	list.WriteByte(']')

	out, err := sjson.SetRawBytes(append([]byte(nil), d.raw...), "cells", list.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode cells: %w", err)
	}
	return indent(out)
}

// Digest hashes the encoded document.
func (d *Document) Digest() (Digest, error) {
	data, err := d.Encode()
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

// Save writes the document to path atomically, creating parent directories.
func (d *Document) Save(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".nbmend-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err = os.Chmod(f.Name(), perm); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
