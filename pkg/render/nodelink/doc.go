// Package nodelink renders canvases as node-link diagrams.
//
// # Overview
//
// Each node becomes a rounded box labeled with its display name and kind;
// each connection becomes an arrow from the output port's node to the input
// port's node, labeled "Out → In" and colored with the connection type's
// display color from the registry.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Values: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Values: append current output values and field values to node labels
//   - RankDir: Graphviz rank direction, "LR" (default) or "TB"
//
// # Determinism
//
// Nodes are emitted in creation order and connections in [canvas.Graph.Edges]
// order, so the same canvas always produces the same DOT source. The CLI
// relies on this to cache rendered artifacts by snapshot hash.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
