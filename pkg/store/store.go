// Package store keeps named canvases in a shared location.
//
// Where [session] remembers the one canvas a user was last editing, a store
// holds any number of canvases by name so they can be pushed from one
// machine and pulled on another. Two backends implement [Store]:
//   - [DirStore]: one JSON file per canvas in a directory
//   - [MongoStore]: one document per canvas in a MongoDB collection
//
// Names are validated with [errors.ValidateCanvasName] before they reach a
// backend. Loading a missing canvas returns a NOT_FOUND error.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
)

// Entry describes a stored canvas.
type Entry struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store saves and loads canvases by name.
type Store interface {
	// Save stores snap under name, replacing any existing canvas.
	Save(ctx context.Context, name string, snap *canvas.Snapshot) error

	// Load returns the canvas stored under name.
	Load(ctx context.Context, name string) (*canvas.Snapshot, error)

	// List returns every stored canvas, sorted by name.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes name. Deleting a missing canvas is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}
