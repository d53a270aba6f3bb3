package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
)

const ext = ".json"

// DirStore keeps each canvas as a JSON file in a directory.
type DirStore struct {
	dir string
}

// NewDirStore creates a store in dir, creating the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create store dir")
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

func (s *DirStore) Save(ctx context.Context, name string, snap *canvas.Snapshot) error {
	if err := errors.ValidateCanvasName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := canvasio.MarshalSnapshot(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save %s", name)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save %s", name)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "save %s", name)
	}
	return nil
}

func (s *DirStore) Load(ctx context.Context, name string) (*canvas.Snapshot, error) {
	if err := errors.ValidateCanvasName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "canvas %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
	}
	return canvasio.UnmarshalSnapshot(data)
}

func (s *DirStore) List(ctx context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list store")
	}
	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ext) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(f.Name(), ext)
		info, err := f.Info()
		if err != nil {
			continue
		}
		snap, err := s.Load(ctx, name)
		if err != nil {
			// Skip files that are not canvases.
			continue
		}
		entries = append(entries, Entry{Name: name, Nodes: len(snap.Nodes), UpdatedAt: info.ModTime()})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateCanvasName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete %s", name)
	}
	return nil
}

func (s *DirStore) Close() error { return nil }

// Dir returns the store directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) String() string { return fmt.Sprintf("dir:%s", s.dir) }

var _ Store = (*DirStore)(nil)
