package canvas

// Behavior is the kind-specific computation of a node.
//
// Calculate reads input values and fields through c and writes every output.
// It returns false when computation cannot proceed (a missing or invalid
// input); it must not keep state between calls other than through fields.
type Behavior interface {
	Calculate(c *Calc) bool
}

// BehaviorFunc adapts a function to the Behavior interface.
type BehaviorFunc func(c *Calc) bool

// Calculate calls f(c).
func (f BehaviorFunc) Calculate(c *Calc) bool { return f(c) }

// Node is a unit of computation with typed ports and editable fields.
//
// Nodes are created by a [Catalog] and attached with [Graph.AddNode]. The
// zero value is not usable.
type Node struct {
	ID       NodeID
	Kind     string
	Name     string
	Position Vec2
	Size     Vec2
	Fields   Fields

	ports    []*Port
	behavior Behavior
	owner    *Graph
}

// Ports returns the node's ports in declaration order.
// The returned slice is a copy; the ports themselves are shared.
func (n *Node) Ports() []*Port {
	out := make([]*Port, len(n.ports))
	copy(out, n.ports)
	return out
}

// Port returns the port at index i.
func (n *Node) Port(i int) (*Port, bool) {
	if i < 0 || i >= len(n.ports) {
		return nil, false
	}
	return n.ports[i], true
}

// PortByName returns the port with the given name.
func (n *Node) PortByName(name string) (*Port, bool) {
	for _, p := range n.ports {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Inputs returns the node's input ports in declaration order.
func (n *Node) Inputs() []*Port { return n.filter(Input) }

// Outputs returns the node's output ports in declaration order.
func (n *Node) Outputs() []*Port { return n.filter(Output) }

func (n *Node) filter(d Direction) []*Port {
	var out []*Port
	for _, p := range n.ports {
		if p.Direction == d {
			out = append(out, p)
		}
	}
	return out
}

// Attached reports whether the node belongs to a graph.
func (n *Node) Attached() bool { return n.owner != nil }

// IsSource reports whether none of the node's inputs is connected.
func (n *Node) IsSource() bool {
	for _, p := range n.ports {
		if p.Direction == Input && p.source != nil {
			return false
		}
	}
	return true
}
