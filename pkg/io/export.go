package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Format is a canvas file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension (.json or .toml).
// Returns UNSUPPORTED for any other extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported canvas file %q: use .json or .toml", path)
}

// WriteJSON encodes the graph's snapshot as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *canvas.Graph, w io.Writer) error {
	return encodeJSON(g.Snapshot(), w)
}

// WriteTOML encodes the graph's snapshot as TOML and writes it to w.
// The output can be re-imported with [ReadTOML].
func WriteTOML(g *canvas.Graph, w io.Writer) error {
	return encodeTOML(g.Snapshot(), w)
}

// Write encodes the graph in the given format.
func Write(g *canvas.Graph, w io.Writer, f Format) error {
	return EncodeSnapshot(g.Snapshot(), w, f)
}

// EncodeSnapshot writes a snapshot in the given format.
func EncodeSnapshot(s *canvas.Snapshot, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return encodeJSON(s, w)
	case FormatTOML:
		return encodeTOML(s, w)
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
}

// MarshalSnapshot returns the JSON encoding of s. It is the form used by the
// session cache and the canvas store.
func MarshalSnapshot(s *canvas.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(s *canvas.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func encodeTOML(s *canvas.Snapshot, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes the graph to path, choosing the format from the
// extension. The file is written to a temporary sibling first and renamed
// into place, so a failed export never truncates an existing canvas.
func ExportFile(g *canvas.Graph, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".canvas-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(g, tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
