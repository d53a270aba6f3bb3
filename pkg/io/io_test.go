package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
)

func testCatalog(t *testing.T) *canvas.Catalog {
	t.Helper()
	cat := canvas.NewCatalog(nil)
	if err := nodes.Register(cat); err != nil {
		t.Fatal(err)
	}
	return cat
}

// sampleGraph builds input → scale → offset plus a calc node fed twice by
// the input, with non-default fields and positions.
func sampleGraph(t *testing.T, cat *canvas.Catalog) *canvas.Graph {
	t.Helper()
	g := canvas.New("sample", cat.Registry())
	add := func(kind string, x, y float64) canvas.NodeID {
		n, err := cat.Create(kind, canvas.Vec2{X: x, Y: y})
		if err != nil {
			t.Fatal(err)
		}
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
		return n.ID
	}
	in := add(nodes.InputID, 0, 0)
	scale := add(nodes.ScaleID, 250, 0)
	offset := add(nodes.OffsetID, 500, 0)
	calc := add(nodes.CalcID, 250, 150)
	_ = add(nodes.DisplayID, 750, 0)

	for _, f := range []struct {
		id    canvas.NodeID
		name  string
		value any
	}{
		{in, "value", 5},
		{scale, "factor", 0.5},
		{calc, "op", "mul"},
	} {
		if err := g.SetField(f.id, f.name, f.value); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range []struct {
		from canvas.NodeID
		fp   int
		to   canvas.NodeID
		tp   int
	}{
		{in, 0, scale, 0},
		{scale, 1, offset, 0},
		{in, 0, calc, 0},
		{in, 0, calc, 1},
	} {
		if err := g.Connect(canvas.PortRef{Node: c.from, Port: c.fp}, canvas.PortRef{Node: c.to, Port: c.tp}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		write func(*canvas.Graph, *bytes.Buffer) error
		read  func(*bytes.Buffer, *canvas.Catalog) (*canvas.Graph, error)
	}{
		{
			name:  "json",
			write: func(g *canvas.Graph, b *bytes.Buffer) error { return WriteJSON(g, b) },
			read:  func(b *bytes.Buffer, c *canvas.Catalog) (*canvas.Graph, error) { return ReadJSON(b, c) },
		},
		{
			name:  "toml",
			write: func(g *canvas.Graph, b *bytes.Buffer) error { return WriteTOML(g, b) },
			read:  func(b *bytes.Buffer, c *canvas.Catalog) (*canvas.Graph, error) { return ReadTOML(b, c) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog(t)
			g := sampleGraph(t, cat)

			var buf bytes.Buffer
			if err := tt.write(g, &buf); err != nil {
				t.Fatalf("write: %v", err)
			}
			encoded := buf.String()
			got, err := tt.read(&buf, cat)
			if err != nil {
				t.Fatalf("read: %v\n%s", err, encoded)
			}
			if diff := cmp.Diff(g.Snapshot(), got.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestReadJSONDocument(t *testing.T) {
	doc := `{
	  "name": "doc",
	  "nodes": [
	    {"id": "a", "kind": "inputNode", "position": {"x": 1, "y": 2}, "fields": {"value": 5}},
	    {"id": "b", "kind": "scaleNode"},
	    {"id": "c", "kind": "offsetNode"}
	  ],
	  "connections": [
	    {"from": "a", "from_port": 0, "to": "b", "to_port": 0},
	    {"from": "b", "from_port": 1, "to": "c", "to_port": 0}
	  ]
	}`
	g, err := ReadJSON(strings.NewReader(doc), testCatalog(t))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if g.Name != "doc" || g.Len() != 3 || g.EdgeCount() != 2 {
		t.Errorf("got name=%q nodes=%d edges=%d", g.Name, g.Len(), g.EdgeCount())
	}
	a, _ := g.Node("a")
	if a.Position != (canvas.Vec2{X: 1, Y: 2}) || a.Fields["value"] != 5.0 {
		t.Errorf("node a = %+v", a)
	}
	b, _ := g.Node("b")
	if b.Fields["factor"] != 2.0 || b.Name != "Scale Node" {
		t.Errorf("node b defaults = %q %v", b.Name, b.Fields)
	}
}

func TestReadTOMLDocument(t *testing.T) {
	doc := `
name = "doc"

[[nodes]]
id = "a"
kind = "inputNode"
[nodes.fields]
value = 3

[[nodes]]
id = "b"
kind = "calcNode"
[nodes.fields]
op = "pow"

[[connections]]
from = "a"
from_port = 0
to = "b"
to_port = 0
`
	g, err := ReadTOML(strings.NewReader(doc), testCatalog(t))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	a, _ := g.Node("a")
	// TOML integers are converted to the field's float type.
	if a.Fields["value"] != 3.0 {
		t.Errorf("value = %#v, want 3.0", a.Fields["value"])
	}
	b, _ := g.Node("b")
	if b.Fields["op"] != "pow" {
		t.Errorf("op = %#v", b.Fields["op"])
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidInput},
		{"unknown kind", `{"nodes": [{"id": "a", "kind": "mystery"}]}`, errors.ErrCodeUnknownKind},
		{
			"dangling port",
			`{"nodes": [{"id": "a", "kind": "inputNode"}], "connections": [{"from": "a", "from_port": 0, "to": "z", "to_port": 0}]}`,
			errors.ErrCodeNotFound,
		},
		{
			"cycle",
			`{"nodes": [{"id": "a", "kind": "scaleNode"}, {"id": "b", "kind": "scaleNode"}],
			  "connections": [{"from": "a", "from_port": 1, "to": "b", "to_port": 0},
			                  {"from": "b", "from_port": 1, "to": "a", "to_port": 0}]}`,
			errors.ErrCodeGraphCycle,
		},
		{"bad field", `{"nodes": [{"id": "a", "kind": "inputNode", "fields": {"value": "lots"}}]}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.doc), testCatalog(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadJSON error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"dir/A.JSON", FormatJSON, true},
		{"a.toml", FormatTOML, true},
		{"a.yaml", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("FormatFromPath(%q) error code = %s", tt.path, errors.GetCode(err))
		}
	}
}

func TestExportImportFile(t *testing.T) {
	cat := testCatalog(t)
	g := sampleGraph(t, cat)
	dir := t.TempDir()

	for _, name := range []string{"canvas.json", "nested/canvas.toml"} {
		path := filepath.Join(dir, name)
		if err := ExportFile(g, path); err != nil {
			t.Fatalf("ExportFile(%s): %v", name, err)
		}
		got, err := ImportFile(path, cat)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", name, err)
		}
		if diff := cmp.Diff(g.Snapshot(), got.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".canvas-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}

	if _, err := ImportFile(filepath.Join(dir, "missing.json"), cat); !os.IsNotExist(unwrapAll(err)) {
		t.Errorf("ImportFile(missing) error = %v, want not-exist", err)
	}
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

func TestSnapshotBytes(t *testing.T) {
	cat := testCatalog(t)
	snap := sampleGraph(t, cat).Snapshot()

	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	g, err := canvas.Restore(got, cat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snap, g.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
