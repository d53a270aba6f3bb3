// Package engine propagates recalculation through a canvas.
//
// # Overview
//
// After a field edit the host calls [Engine.RecalculateFrom] with the edited
// node (or [Engine.Edit], which sets the field first). The engine then:
//
//  1. Collects the forward closure of the node along output→input
//     connections with a depth-first walk that expands each node once.
//  2. Orders that working set so every node follows its feeders, breaking
//     ties by creation order.
//  3. Calls Calculate on each node in order.
//
// Only the changed node and its downstream nodes are recomputed. The cost of
// a pass is linear in the size of the working set.
//
// # Failures
//
// A node returning false from Calculate does not abort the pass. It is
// recorded in the [Report], every node downstream of it is skipped and keeps
// its previous values, and independent branches still run. The pass itself
// fails only on a cycle (which Connect prevents) or a reentrant call.
//
// # Reentrancy
//
// The graph is frozen for the duration of a pass. A behavior that tries to
// mutate the graph, or to start another pass, gets GRAPH_BUSY.
package engine
