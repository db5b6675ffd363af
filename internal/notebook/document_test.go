package notebook

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `{"cells":[{"cell_type":"code","execution_count":3,"metadata":{"nbgrader":{"grade":false,"grade_id":"a1","locked":false,"solution":true}},"outputs":[],"source":["def f(x):\n","    return x < 2 & True\n"]},{"cell_type":"markdown","metadata":{},"source":"héllo\nworld"}],"metadata":{"kernelspec":{"name":"python3"}},"nbformat":4,"nbformat_minor":2}`

func TestParseRejectsNonNotebooks(t *testing.T) {
	for _, in := range []string{`[]`, `{"cells":{}}`, `{"nbformat":4}`, `{"cells":[1]}`, `not json`} {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrNotNotebook) {
			t.Fatalf("Parse(%q): expected ErrNotNotebook, got %v", in, err)
		}
	}
}

func TestEncodeStable(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Parse(first)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	second, err := again.Encode()
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("encoding is not stable:\n%s\n---\n%s", first, second)
	}
	text := string(first)
	if !strings.HasSuffix(text, "}\n") {
		t.Fatalf("expected trailing newline, got %q", text[len(text)-3:])
	}
	if !strings.Contains(text, "\n \"cells\": [\n  {\n   \"cell_type\": \"code\"") {
		t.Fatalf("unexpected indentation:\n%s", text)
	}
	if !strings.Contains(text, "héllo") || !strings.Contains(text, "x < 2 & True") {
		t.Fatalf("text must not be escaped:\n%s", text)
	}
	iCells := strings.Index(text, `"cells"`)
	iMeta := strings.LastIndex(text, `"kernelspec"`)
	iFormat := strings.Index(text, `"nbformat"`)
	if !(iCells < iMeta && iMeta < iFormat) {
		t.Fatalf("top-level key order changed:\n%s", text)
	}
}

func TestParseStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, sampleDoc...)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 cells, got %d", doc.Len())
	}
}

func TestTagsFirstAppearance(t *testing.T) {
	raw := `{"cells":[` +
		`{"cell_type":"code","metadata":{"nbgrader":{"grade_id":"b"}},"source":[]},` +
		`{"cell_type":"code","metadata":{},"source":[]},` +
		`{"cell_type":"code","metadata":{"nbgrader":{"grade_id":"a"}},"source":[]},` +
		`{"cell_type":"code","metadata":{"nbgrader":{"grade_id":"b"}},"source":[]}` +
		`]}`
	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := strings.Join(doc.Tags(), ",")
	if got != "b,a" {
		t.Fatalf("Tags() = %q, want %q", got, "b,a")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cp := doc.Clone()
	if err := cp.Cell(0).AppendSource([]string{"extra\n"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	cp.SetCells(cp.Cells()[:1])
	if doc.Len() != 2 || len(doc.Cell(0).Source()) != 2 {
		t.Fatalf("original document modified through clone")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "nb.ipynb")
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %v", info.Mode().Perm())
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, _ := doc.Digest()
	b, _ := loaded.Digest()
	if a != b {
		t.Fatalf("digest changed across save/load")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}
