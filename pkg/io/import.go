package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// ReadJSON decodes a JSON canvas from r and rebuilds the graph.
//
// The input must be a JSON object with "nodes" and "connections" arrays:
//
//	{
//	  "name": "demo",
//	  "nodes": [
//	    {"id": "a", "kind": "inputNode", "position": {"x": 0, "y": 0}, "fields": {"value": 5}},
//	    {"id": "b", "kind": "scaleNode", "position": {"x": 250, "y": 0}}
//	  ],
//	  "connections": [
//	    {"from": "a", "from_port": 0, "to": "b", "to_port": 0}
//	  ]
//	}
//
// Nodes are instantiated through cat, so every kind must be registered there.
// Connections are replayed through [canvas.Graph.Connect]; a canvas with a
// cycle, a type mismatch or a dangling port reference is rejected with the
// same error a live edit would get.
//
// The returned graph has no computed values yet. Callers recalculate it.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, cat *canvas.Catalog) (*canvas.Graph, error) {
	s, err := decodeJSON(r)
	if err != nil {
		return nil, err
	}
	return canvas.Restore(s, cat, nil)
}

// ReadTOML decodes a TOML canvas from r and rebuilds the graph. The document
// has the same shape as the JSON form, with nodes and connections as arrays
// of tables.
func ReadTOML(r io.Reader, cat *canvas.Catalog) (*canvas.Graph, error) {
	s, err := decodeTOML(r)
	if err != nil {
		return nil, err
	}
	return canvas.Restore(s, cat, nil)
}

// Read decodes a canvas in the given format.
func Read(r io.Reader, cat *canvas.Catalog, f Format) (*canvas.Graph, error) {
	s, err := DecodeSnapshot(r, f)
	if err != nil {
		return nil, err
	}
	return canvas.Restore(s, cat, nil)
}

// DecodeSnapshot reads a snapshot in the given format without rebuilding it.
func DecodeSnapshot(r io.Reader, f Format) (*canvas.Snapshot, error) {
	switch f {
	case FormatJSON:
		return decodeJSON(r)
	case FormatTOML:
		return decodeTOML(r)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
}

// UnmarshalSnapshot decodes the JSON produced by [MarshalSnapshot].
func UnmarshalSnapshot(data []byte) (*canvas.Snapshot, error) {
	return decodeJSON(bytes.NewReader(data))
}

func decodeJSON(r io.Reader) (*canvas.Snapshot, error) {
	var s canvas.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return &s, nil
}

func decodeTOML(r io.Reader) (*canvas.Snapshot, error) {
	var s canvas.Snapshot
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return &s, nil
}

// ImportFile reads a canvas file, choosing the format from the extension.
//
// If the file cannot be opened, or if decoding fails, ImportFile returns an
// error wrapping the underlying cause with the file path for context. A
// missing file can be detected with os.IsNotExist / errors.Is(err, fs.ErrNotExist).
func ImportFile(path string, cat *canvas.Catalog) (*canvas.Graph, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	g, err := Read(file, cat, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
