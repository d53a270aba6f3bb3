package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
)

func testGraph(t *testing.T) (*canvas.Graph, *canvas.Catalog) {
	t.Helper()
	cat := canvas.NewCatalog(nil)
	if err := nodes.Register(cat); err != nil {
		t.Fatal(err)
	}
	g := canvas.New("demo", cat.Registry())
	in, err := cat.Create(nodes.InputID, canvas.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	scale, err := cat.Create(nodes.ScaleID, canvas.Vec2{X: 250})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []*canvas.Node{in, scale} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Connect(canvas.PortRef{Node: in.ID, Port: 0}, canvas.PortRef{Node: scale.ID, Port: 0}); err != nil {
		t.Fatal(err)
	}
	return g, cat
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"file":  fs,
		"cache": NewCacheStore(fc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "test:")),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			g, cat := testGraph(t)
			sess, err := New(g, time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			sess.Editor.SetZoom(1.5)
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if got.Editor.Zoom != 1.5 {
				t.Errorf("zoom = %v, want 1.5", got.Editor.Zoom)
			}
			restored, err := got.Restore(cat)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if diff := cmp.Diff(g.Snapshot(), restored.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("canvas mismatch (-want +got):\n%s", diff)
			}

			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got, _ := store.Get(ctx, sess.ID); got != nil {
				t.Errorf("Get after Delete = %+v, want nil", got)
			}
			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestStoreMissing(t *testing.T) {
	for name, store := range stores(t) {
		got, err := store.Get(context.Background(), "nope")
		if got != nil || err != nil {
			t.Errorf("%s: Get(missing) = %v, %v", name, got, err)
		}
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	g, _ := testGraph(t)

	expired := &Session{ID: "old", Canvas: g.Snapshot(), ExpiresAt: time.Now().Add(-time.Minute)}
	forever := &Session{ID: "keep", Canvas: g.Snapshot()}
	for _, s := range []*Session{expired, forever} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(store.sessionPath("old")); !os.IsNotExist(err) {
		t.Errorf("expired session file still present: %v", err)
	}
	if got, _ := store.Get(ctx, "keep"); got == nil {
		t.Error("session without expiry was removed")
	}
}

func TestFileStoreRejectsBadID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "../escape"); err == nil {
		t.Error("Get accepted a path traversal ID")
	}
}

func TestCacheStoreSkipsExpired(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := NewCacheStore(fc, nil)
	g, _ := testGraph(t)
	sess := &Session{ID: "s", Canvas: g.Snapshot(), ExpiresAt: time.Now().Add(-time.Second)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := store.Get(ctx, "s"); got != nil {
		t.Errorf("Get(expired) = %+v, want nil", got)
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewCLIStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := testGraph(t)
	sess, err := New(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	sess.Source = "demo.json"
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if sess.ID != LastSessionID {
		t.Errorf("ID = %q, want %q", sess.ID, LastSessionID)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("session file: %v", err)
	}

	again, err := NewCLIStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := again.GetSession(ctx)
	if err != nil || got == nil || got.Source != "demo.json" {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}
	if err := again.DeleteSession(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.GetSession(ctx); got != nil {
		t.Error("session still present after DeleteSession")
	}
}

func TestRestoreWithoutCanvas(t *testing.T) {
	var s Session
	if _, err := s.Restore(canvas.NewCatalog(nil)); err != ErrNoCanvas {
		t.Errorf("Restore = %v, want ErrNoCanvas", err)
	}
}

func TestEditorZoomClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{0.1, MinZoom},
		{0.6, 0.6},
		{5, MaxZoom},
		{1.25, 1.25},
	}
	for _, tt := range tests {
		e := NewEditorState()
		e.SetZoom(tt.in)
		if e.Zoom != tt.want {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.in, e.Zoom, tt.want)
		}
	}
}

func TestUpdateForgetsRemovedSelection(t *testing.T) {
	g, _ := testGraph(t)
	sess, err := New(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	first := g.Nodes()[0].ID
	sess.Editor.Select(first)
	sess.Editor.Pan(10, -5)

	if err := g.RemoveNode(first); err != nil {
		t.Fatal(err)
	}
	sess.Update(g)
	if sess.Editor.Selected != "" {
		t.Errorf("Selected = %q, want cleared", sess.Editor.Selected)
	}
	if sess.Editor.Offset != (canvas.Vec2{X: 10, Y: -5}) {
		t.Errorf("Offset = %+v", sess.Editor.Offset)
	}
	if len(sess.Canvas.Nodes) != 1 {
		t.Errorf("snapshot nodes = %d, want 1", len(sess.Canvas.Nodes))
	}
}
