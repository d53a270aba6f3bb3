package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// isolate points every XDG directory at a fresh temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := run(t, args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
}

// loadFile imports and recalculates a canvas file.
func loadFile(t *testing.T, path string) *canvas.Graph {
	t.Helper()
	cat, err := newCatalog()
	if err != nil {
		t.Fatal(err)
	}
	g, err := canvasio.ImportFile(path, cat)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.New(g, nil).RecalculateAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	return g
}

func nodeOfKind(t *testing.T, g *canvas.Graph, kind string) *canvas.Node {
	t.Helper()
	for _, n := range g.Nodes() {
		if n.Kind == kind {
			return n
		}
	}
	t.Fatalf("no %s in canvas", kind)
	return nil
}

func TestCommandFlow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "demo.json")

	mustRun(t, "new", "demo", "--canvas", path)
	mustRun(t, "add", nodes.InputID, "--canvas", path, "--set", "value=5", "--at", "0,0")
	mustRun(t, "add", nodes.ScaleID, "--canvas", path, "--set", "factor=3", "--name", "Triple")

	g := loadFile(t, path)
	in, scale := nodeOfKind(t, g, nodes.InputID), nodeOfKind(t, g, nodes.ScaleID)
	if scale.Name != "Triple" {
		t.Errorf("scale name = %q", scale.Name)
	}

	mustRun(t, "connect", string(in.ID)+":Value", string(scale.ID)+":In", "--canvas", path)
	g = loadFile(t, path)
	if v, _ := g.Value(canvas.PortRef{Node: scale.ID, Port: 1}); v != 15.0 {
		t.Errorf("scale output = %v, want 15", v)
	}

	// Without --canvas the last session's file is edited.
	mustRun(t, "set", string(scale.ID)[:8], "factor", "4")
	g = loadFile(t, path)
	if v, _ := g.Value(canvas.PortRef{Node: scale.ID, Port: 1}); v != 20.0 {
		t.Errorf("scale output after set = %v, want 20", v)
	}

	mustRun(t, "show")
	mustRun(t, "show", "--format", "toml")
	mustRun(t, "recalc", string(in.ID))
	mustRun(t, "session", "show")
	mustRun(t, "render", "-o", filepath.Join(dir, "demo.dot"), "--values")

	mustRun(t, "disconnect", string(in.ID)+":0", string(scale.ID)+":0")
	mustRun(t, "remove", string(in.ID))
	g = loadFile(t, path)
	if g.Len() != 1 || g.EdgeCount() != 0 {
		t.Errorf("after remove: nodes=%d edges=%d", g.Len(), g.EdgeCount())
	}
}

func TestCommandErrors(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "demo.toml")

	if err := run(t, "show"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show without session: %v, want NOT_FOUND", err)
	}
	if err := run(t, "show", "--canvas", filepath.Join(dir, "none.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show missing file: %v, want NOT_FOUND", err)
	}

	mustRun(t, "new", "--canvas", path)
	if err := run(t, "new", "--canvas", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("new over existing file: %v, want INVALID_INPUT", err)
	}
	mustRun(t, "new", "--canvas", path, "--force")

	if err := run(t, "add", "mystery"); !errors.Is(err, errors.ErrCodeUnknownKind) {
		t.Errorf("add unknown kind: %v, want UNKNOWN_KIND", err)
	}
	if err := run(t, "new", "../escape"); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("new bad name: %v, want INVALID_NAME", err)
	}

	mustRun(t, "add", nodes.ScaleID)
	mustRun(t, "add", nodes.OffsetID)
	g := loadFile(t, path)
	scale, offset := nodeOfKind(t, g, nodes.ScaleID), nodeOfKind(t, g, nodes.OffsetID)
	if err := run(t, "connect", string(scale.ID)+":Out", string(offset.ID)+":Out"); !errors.Is(err, errors.ErrCodeDirection) {
		t.Errorf("output to output: %v, want DIRECTION", err)
	}
	if err := run(t, "set", string(scale.ID), "factor", "lots"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad field value: %v, want INVALID_INPUT", err)
	}
}

func TestStoreCommands(t *testing.T) {
	dir := isolate(t)

	mustRun(t, "new", "shared")
	mustRun(t, "add", nodes.InputID, "--set", "value=7")
	mustRun(t, "store", "push")
	mustRun(t, "store", "push", "copy")
	mustRun(t, "store", "list")

	s, err := store.NewDirStore(filepath.Join(dir, "data", appName, "canvases"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name != "copy" || entries[1].Name != "shared" || entries[0].Nodes != 1 {
		t.Fatalf("entries = %+v", entries)
	}

	out := filepath.Join(dir, "pulled.json")
	mustRun(t, "new", "other")
	mustRun(t, "store", "pull", "copy", "--canvas", out)
	g := loadFile(t, out)
	if in := nodeOfKind(t, g, nodes.InputID); in.Fields["value"] != 7.0 {
		t.Errorf("pulled value = %v", in.Fields["value"])
	}

	mustRun(t, "store", "delete", "copy")
	if err := run(t, "store", "pull", "copy"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("pull deleted: %v, want NOT_FOUND", err)
	}
	mustRun(t, "session", "clear")
	if err := run(t, "show"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show after clear: %v, want NOT_FOUND", err)
	}
}

func TestResolveNode(t *testing.T) {
	e, ids := editorFixture(t)
	g := e.Graph()

	if n, err := resolveNode(g, string(ids[1])); err != nil || n.ID != ids[1] {
		t.Errorf("exact ID: %v, %v", n, err)
	}
	if _, err := resolveNode(g, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty: %v", err)
	}
	if _, err := resolveNode(g, "zzz-not-there"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing: %v", err)
	}

	ref, err := resolvePort(g, string(ids[1])+":Out")
	if err != nil || ref != (canvas.PortRef{Node: ids[1], Port: 1}) {
		t.Errorf("port by name = %+v, %v", ref, err)
	}
	ref, err = resolvePort(g, string(ids[1])+":0")
	if err != nil || ref != (canvas.PortRef{Node: ids[1], Port: 0}) {
		t.Errorf("port by index = %+v, %v", ref, err)
	}
	if _, err := resolvePort(g, string(ids[1])); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing port: %v", err)
	}
	if _, err := resolvePort(g, string(ids[1])+":Nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown port: %v", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"5", 5.0},
		{"-2.5", -2.5},
		{"true", true},
		{"mul", "mul"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseVec(t *testing.T) {
	if v, err := parseVec("250, -10.5"); err != nil || v != (canvas.Vec2{X: 250, Y: -10.5}) {
		t.Errorf("parseVec = %+v, %v", v, err)
	}
	for _, bad := range []string{"", "1", "a,2", "1,b"} {
		if _, err := parseVec(bad); err == nil {
			t.Errorf("parseVec(%q) should fail", bad)
		}
	}
}

func TestFormatError(t *testing.T) {
	err := errors.New(errors.ErrCodeNotFound, "node %q not found", "x")
	if got := FormatError(err); got == "" {
		t.Error("FormatError returned empty string")
	}
}
