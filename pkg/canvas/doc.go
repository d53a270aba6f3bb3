// Package canvas provides the graph data model of the node editor.
//
// # Overview
//
// A [Graph] owns an ordered sequence of [Node] values. Each node owns an
// ordered list of typed [Port] values, and connections are recorded on both
// ends as [PortRef] addresses rather than pointers:
//
//   - An input port has at most one source output.
//   - An output port feeds any number of inputs.
//   - Connections always run output→input and never close a cycle.
//
// [Graph.Connect] enforces all of this at the mutation boundary, so a
// rejected connection leaves the graph unchanged and the graph is never in an
// invalid structural state. [Graph.Validate] re-checks the invariants.
//
// # Creating Nodes
//
// Node kinds are registered in a [Catalog], which acts as the "create node at
// position" factory:
//
//	cat := canvas.NewCatalog(reg)
//	nodes.Register(cat)
//	n, _ := cat.Create("inputNode", canvas.Vec2{X: 10, Y: 20})
//	g.AddNode(n)
//
// # Values
//
// Output values are written by a node's [Behavior] through [Calc]. Inputs
// read their source's value, or the connection type's default when
// unconnected. Inputs are never written directly; [Graph.SetValue] rejects
// that with INVALID_WRITE.
//
// # Serialization
//
// [Graph.Snapshot] and [Restore] convert to and from [Snapshot], the
// structural form used by package io and the session cache. Node IDs are
// preserved verbatim.
//
// # Recalculation
//
// This package calculates single nodes ([Graph.Calculate]); ordering and
// propagation live in package engine. While the engine holds the graph via
// [Graph.Freeze], every mutation fails with GRAPH_BUSY.
package canvas
