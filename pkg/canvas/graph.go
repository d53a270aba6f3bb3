package canvas

import (
	"slices"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/types"
)

// Graph is a canvas: the owning collection of nodes and their connections.
//
// Nodes are kept in creation order, which is also the order used for
// serialization and for breaking ties during recalculation. All other
// structures reference nodes by [NodeID] and ports by [PortRef].
//
// The zero value is not usable - use New to create a valid Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	Name string

	nodes    map[NodeID]*Node
	order    []NodeID
	registry *types.Registry
	frozen   bool
}

// New creates an empty graph. If reg is nil, the built-in registry is used.
func New(name string, reg *types.Registry) *Graph {
	if reg == nil {
		reg = types.NewDefault(nil)
	}
	return &Graph{
		Name:     name,
		nodes:    make(map[NodeID]*Node),
		registry: reg,
	}
}

// Registry returns the type registry used for connection validation.
func (g *Graph) Registry() *types.Registry { return g.registry }

// AddNode attaches n at the end of the node sequence.
// Returns INVALID_INPUT for a nil node or one attached elsewhere, and
// GRAPH_BUSY while a recalculation pass holds the graph.
func (g *Graph) AddNode(n *Node) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if n == nil || n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node must have an ID")
	}
	if n.owner != nil {
		return errors.New(errors.ErrCodeInvalidInput, "node %s is already attached to a canvas", n.ID)
	}
	if _, exists := g.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate node ID %s", n.ID)
	}
	n.owner = g
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// RemoveNode severs every connection on the node's ports, then removes it.
// Returns NOT_FOUND if the node is not part of the graph.
func (g *Graph) RemoveNode(id NodeID) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	for _, p := range n.ports {
		if p.Direction == Input {
			if p.source != nil {
				g.unlink(*p.source, p.Ref())
			}
			continue
		}
		for _, t := range slices.Clone(p.targets) {
			g.unlink(p.Ref(), t)
		}
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(x NodeID) bool { return x == id })
	n.owner = nil
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Port resolves a port reference. Returns NOT_FOUND for an unknown node or
// an out-of-range port index.
func (g *Graph) Port(ref PortRef) (*Port, error) {
	n, ok := g.nodes[ref.Node]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %s not found", ref.Node)
	}
	p, ok := n.Port(ref.Port)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %s has no port %d", ref.Node, ref.Port)
	}
	return p, nil
}

// Edges returns every connection in deterministic order: nodes in creation
// order, output ports in declaration order, targets in connection order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, id := range g.order {
		for _, p := range g.nodes[id].ports {
			for _, t := range p.targets {
				edges = append(edges, Edge{From: p.Ref(), To: t})
			}
		}
	}
	return edges
}

// EdgeCount returns the number of connections.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		for _, p := range n.ports {
			count += len(p.targets)
		}
	}
	return count
}

// Dependents returns the IDs of nodes fed by any output of id, without
// duplicates, in port and connection order.
func (g *Graph) Dependents(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out []NodeID
	for _, p := range n.ports {
		for _, t := range p.targets {
			if !slices.Contains(out, t.Node) {
				out = append(out, t.Node)
			}
		}
	}
	return out
}

// Feeders returns the IDs of nodes whose outputs feed any input of id,
// without duplicates, in port order.
func (g *Graph) Feeders(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out []NodeID
	for _, p := range n.ports {
		if p.source != nil && !slices.Contains(out, p.source.Node) {
			out = append(out, p.source.Node)
		}
	}
	return out
}

// Sources returns nodes with no connected inputs, in creation order.
func (g *Graph) Sources() []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.IsSource() {
			out = append(out, n)
		}
	}
	return out
}

// SetField changes a node field. The value is converted to the type of the
// field's current value; strings are parsed. Returns NOT_FOUND for an unknown
// node or field and INVALID_INPUT for a value that cannot be converted.
//
// SetField does not recalculate; hosts call the engine afterwards, or use
// the engine's Edit entry point which does both.
func (g *Graph) SetField(id NodeID, name string, value any) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	current, ok := n.Fields[name]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s has no field %q", id, name)
	}
	v, err := coerceField(current, value)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "field %q", name)
	}
	n.Fields[name] = v
	return nil
}

// Freeze marks the graph as held by a recalculation pass. While frozen,
// every structural mutation and field edit fails with GRAPH_BUSY. The
// returned function releases the hold.
func (g *Graph) Freeze() (release func()) {
	g.frozen = true
	return func() { g.frozen = false }
}

// Frozen reports whether a recalculation pass currently holds the graph.
func (g *Graph) Frozen() bool { return g.frozen }

func (g *Graph) checkMutable() error {
	if g.frozen {
		return errors.New(errors.ErrCodeGraphBusy, "canvas is being recalculated")
	}
	return nil
}
