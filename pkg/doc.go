// Package pkg provides the core libraries for nodecanvas node-graph
// calculation.
//
// # Overview
//
// A canvas is a directed acyclic graph of nodes with typed input and output
// ports. Each node kind carries a behavior that reads its inputs and fields
// and writes its outputs. Editing a field or a connection recalculates
// exactly the nodes downstream of the change, in topological order.
//
// The pkg directory is organized into these areas:
//
//  1. [types] - Port data types with colors and value coercion
//  2. [canvas] - Nodes, ports, connections, the node catalog and snapshots
//  3. [engine] - Incremental recalculation with per-node failure reports
//  4. [nodes] - The built-in Float node kinds (input, scale, offset, calc, clamp, display)
//  5. [io] - JSON and TOML canvas files
//  6. [store], [session], [cache] - Persistence of named canvases, editing
//     sessions and rendered artifacts
//  7. [render/nodelink] - Graphviz node-link diagrams of a canvas
//
// # Architecture
//
// The typical data flow:
//
//	canvas file / session / store
//	         ↓
//	    [io] or [canvas.Restore] (rebuild the graph)
//	         ↓
//	    [engine] (recalculate)
//	         ↓
//	    edits via [engine.Engine.Edit], [canvas.Graph.Connect]
//	         ↓
//	    [io] export, [session] save, [render/nodelink] SVG/DOT
//
// # Quick Start
//
//	cat := canvas.NewCatalog(nil)
//	_ = nodes.Register(cat)
//
//	g := canvas.New("demo", cat.Registry())
//	in, _ := cat.Create(nodes.InputID, canvas.Vec2{})
//	scale, _ := cat.Create(nodes.ScaleID, canvas.Vec2{X: 250})
//	_ = g.AddNode(in)
//	_ = g.AddNode(scale)
//	_ = g.Connect(canvas.PortRef{Node: in.ID, Port: 0}, canvas.PortRef{Node: scale.ID, Port: 0})
//
//	e := engine.New(g, nil)
//	report, _ := e.Edit(ctx, in.ID, "value", 5.0)
//	out, _ := g.Value(canvas.PortRef{Node: scale.ID, Port: 1}) // 10
//
// # Errors
//
// Every package reports failures through [errors] codes (TYPE_MISMATCH,
// GRAPH_CYCLE, NOT_FOUND, ...) so the CLI and the HTTP server can map them
// to exit messages and status codes.
//
// [types]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/types
// [canvas]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/canvas
// [engine]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/engine
// [nodes]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/nodes
// [io]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/errors
// [canvas.Restore]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/canvas#Restore
// [engine.Engine.Edit]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/engine#Engine.Edit
// [canvas.Graph.Connect]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/canvas#Graph.Connect
package pkg
