package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
)

func snapshot(t *testing.T, nodeKinds ...string) *canvas.Snapshot {
	t.Helper()
	cat := canvas.NewCatalog(nil)
	if err := nodes.Register(cat); err != nil {
		t.Fatal(err)
	}
	g := canvas.New("stored", cat.Registry())
	for _, k := range nodeKinds {
		n, err := cat.Create(k, canvas.Vec2{})
		if err != nil {
			t.Fatal(err)
		}
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	return g.Snapshot()
}

func TestDirStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a := snapshot(t, nodes.InputID, nodes.ScaleID)
	b := snapshot(t, nodes.DisplayID)
	if err := s.Save(ctx, "beta", b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "alpha", a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "alpha")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(a, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "beta"}, names); diff != "" {
		t.Errorf("List names (-want +got):\n%s", diff)
	}
	if entries[0].Nodes != 2 || entries[0].UpdatedAt.IsZero() {
		t.Errorf("entry = %+v", entries[0])
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "alpha"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load after Delete = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestDirStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "c", snapshot(t, nodes.InputID)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "c", snapshot(t, nodes.InputID, nodes.InputID, nodes.InputID)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "c")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(got.Nodes))
	}
	leftovers, _ := filepath.Glob(filepath.Join(s.Dir(), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left: %v", leftovers)
	}
}

func TestDirStoreRejectsNames(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "../up", "a/b", "a\\b"} {
		if err := s.Save(ctx, name, snapshot(t)); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Save(%q) = %v, want INVALID_NAME", name, err)
		}
		if _, err := s.Load(ctx, name); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Load(%q) = %v, want INVALID_NAME", name, err)
		}
	}
}

func TestDirStoreListSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "ok", snapshot(t)); err != nil {
		t.Fatal(err)
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "ok" {
		t.Errorf("List = %+v", entries)
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewMongoStore = %v, want INVALID_INPUT", err)
	}
}
