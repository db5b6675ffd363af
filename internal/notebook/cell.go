package notebook

import (
	"fmt"
	"reflect"
	"strings"

	"fortio.org/safecast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Kind is the cell_type of a cell.
type Kind string

const (
	KindCode     Kind = "code"
	KindMarkdown Kind = "markdown"
	KindRaw      Kind = "raw"
)

const (
	keyKind       = "cell_type"
	keySource     = "source"
	keyMetadata   = "metadata"
	keyOutputs    = "outputs"
	keyExecCount  = "execution_count"
	keyNamespace  = "metadata.nbgrader"
	keyGrade      = "metadata.nbgrader.grade"
	keyPoints     = "metadata.nbgrader.points"
	emptyMetadata = "{}"
)

// Cell is one entry of a document's cell list, kept as raw JSON.
type Cell struct {
	raw []byte
}

// NewCell wraps a raw JSON object. The bytes are copied.
func NewCell(raw []byte) (*Cell, error) {
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, fmt.Errorf("cell is not a JSON object")
	}
	return &Cell{raw: append([]byte(nil), raw...)}, nil
}

// Raw returns the cell's JSON bytes. Callers must not modify them.
func (c *Cell) Raw() []byte {
	return c.raw
}

// Clone returns an independent copy of the cell.
func (c *Cell) Clone() *Cell {
	return &Cell{raw: append([]byte(nil), c.raw...)}
}

// Equal reports whether both cells have identical bytes.
func (c *Cell) Equal(other *Cell) bool {
	if c == nil || other == nil {
		return c == other
	}
	return string(c.raw) == string(other.raw)
}

func (c *Cell) get(path string) gjson.Result {
	return gjson.GetBytes(c.raw, path)
}

// Kind returns the cell_type, or "" when it is missing.
func (c *Cell) Kind() Kind {
	return Kind(c.get(keyKind).String())
}

// Source returns the source as lines. A source stored as one string is split
// after each newline, so joining the lines always yields the original text.
func (c *Cell) Source() []string {
	res := c.get(keySource)
	switch {
	case res.IsArray():
		items := res.Array()
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, item.String())
		}
		return lines
	case res.Type == gjson.String:
		return splitLines(res.String())
	default:
		return nil
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// MetadataRaw returns the raw metadata object, or nil when absent.
func (c *Cell) MetadataRaw() []byte {
	res := c.get(keyMetadata)
	if !res.Exists() {
		return nil
	}
	return []byte(res.Raw)
}

// MetadataEqual compares metadata by value: key order and number spelling
// do not matter.
func (c *Cell) MetadataEqual(other *Cell) bool {
	a, b := c.get(keyMetadata), other.get(keyMetadata)
	if a.Exists() != b.Exists() {
		return false
	}
	return reflect.DeepEqual(a.Value(), b.Value())
}

// Grading returns the nbgrader namespace of the cell. ok is false when the
// namespace is absent or is not an object.
func (c *Cell) Grading() (Grading, bool) {
	ns := c.get(keyNamespace)
	if !ns.IsObject() {
		return Grading{}, false
	}
	g := Grading{
		Locked: ns.Get("locked").Bool(),
		Graded: ns.Get("grade").Bool(),
	}
	if id := ns.Get("grade_id"); id.Exists() {
		g.Tag = id.String()
		g.HasTag = g.Tag != ""
	}
	if pts := ns.Get("points"); pts.Exists() {
		g.HasPoints = true
		g.Points = pts.Float()
		g.pointsRaw = pts.Raw
	}
	return g, true
}

// Tag returns the grade_id of the cell.
func (c *Cell) Tag() (string, bool) {
	g, ok := c.Grading()
	if !ok || !g.HasTag {
		return "", false
	}
	return g.Tag, true
}

// HasOutputs reports whether the outputs key is present.
func (c *Cell) HasOutputs() bool {
	return c.get(keyOutputs).Exists()
}

// Outputs returns the raw output records.
func (c *Cell) Outputs() []gjson.Result {
	res := c.get(keyOutputs)
	if !res.IsArray() {
		return nil
	}
	return res.Array()
}

// HasExecutionCount reports whether execution_count is present, null included.
func (c *Cell) HasExecutionCount() bool {
	return c.get(keyExecCount).Exists()
}

// ExecutionCount returns the execution count when it is an integer.
func (c *Cell) ExecutionCount() (int, bool) {
	res := c.get(keyExecCount)
	if res.Type != gjson.Number {
		return 0, false
	}
	n, err := safecast.Conv[int](res.Int())
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Cell) setRaw(path string, value []byte) error {
	out, err := sjson.SetRawBytes(c.raw, path, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	c.raw = out
	return nil
}

// SetKind overwrites cell_type.
func (c *Cell) SetKind(kind Kind) error {
	value, err := marshalValue(string(kind))
	if err != nil {
		return err
	}
	return c.setRaw(keyKind, value)
}

// SetMetadataFrom overwrites the whole metadata object with other's.
func (c *Cell) SetMetadataFrom(other *Cell) error {
	meta := other.MetadataRaw()
	if meta == nil {
		meta = []byte(emptyMetadata)
	}
	return c.setRaw(keyMetadata, meta)
}

// SetPointsFrom copies the points literal of g into the cell's namespace.
func (c *Cell) SetPointsFrom(g Grading) error {
	if !g.HasPoints {
		return fmt.Errorf("set points: source has no points")
	}
	if !c.get(keyNamespace).IsObject() {
		return fmt.Errorf("set points: cell has no grading namespace")
	}
	return c.setRaw(keyPoints, []byte(g.pointsRaw))
}

// ClearGrade sets grade to false and removes points. It reports whether the
// cell changed.
func (c *Cell) ClearGrade() (bool, error) {
	changed := false
	if c.get(keyGrade).Bool() {
		if err := c.setRaw(keyGrade, []byte("false")); err != nil {
			return changed, err
		}
		changed = true
	}
	if c.get(keyPoints).Exists() {
		out, err := sjson.DeleteBytes(c.raw, keyPoints)
		if err != nil {
			return changed, fmt.Errorf("delete points: %w", err)
		}
		c.raw = out
		changed = true
	}
	return changed, nil
}

// AppendSource appends lines to the source, storing it as a list.
func (c *Cell) AppendSource(lines []string) error {
	merged := append(c.Source(), lines...)
	if merged == nil {
		merged = []string{}
	}
	value, err := marshalValue(merged)
	if err != nil {
		return err
	}
	return c.setRaw(keySource, value)
}

// SetOutputsEmpty sets outputs to an empty list.
func (c *Cell) SetOutputsEmpty() error {
	return c.setRaw(keyOutputs, []byte("[]"))
}

// SetExecutionCountZero sets execution_count to 0.
func (c *Cell) SetExecutionCountZero() error {
	return c.setRaw(keyExecCount, []byte("0"))
}
