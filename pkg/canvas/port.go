package canvas

import "slices"

// Port is a typed attachment point on a node.
//
// Ports are owned by their node, which is owned by the graph. Connections
// are stored as [PortRef] values on both ends: an input holds its single
// source, an output holds the ordered list of inputs it feeds.
type Port struct {
	Name      string
	Direction Direction
	Type      string // Connection type name resolved through the type registry
	Required  bool   // Calculation fails while a required input is unconnected

	node    NodeID
	index   int
	source  *PortRef  // inputs only
	targets []PortRef // outputs only
	value   any       // outputs only, last value written by Calculate
}

// Ref returns the address of this port.
func (p *Port) Ref() PortRef { return PortRef{Node: p.node, Port: p.index} }

// Node returns the ID of the node owning this port.
func (p *Port) Node() NodeID { return p.node }

// Index returns the position of this port in its node's port list.
func (p *Port) Index() int { return p.index }

// IsInput reports whether this is an input port.
func (p *Port) IsInput() bool { return p.Direction == Input }

// IsOutput reports whether this is an output port.
func (p *Port) IsOutput() bool { return p.Direction == Output }

// Connected reports whether the port has at least one connection.
func (p *Port) Connected() bool {
	if p.Direction == Input {
		return p.source != nil
	}
	return len(p.targets) > 0
}

// Source returns the output feeding this input, if any.
// Always returns false for output ports.
func (p *Port) Source() (PortRef, bool) {
	if p.source == nil {
		return PortRef{}, false
	}
	return *p.source, true
}

// Targets returns a copy of the inputs fed by this output, in connection order.
// Returns nil for input ports.
func (p *Port) Targets() []PortRef { return slices.Clone(p.targets) }

func (p *Port) removeTarget(in PortRef) bool {
	i := slices.Index(p.targets, in)
	if i < 0 {
		return false
	}
	p.targets = slices.Delete(p.targets, i, i+1)
	return true
}
