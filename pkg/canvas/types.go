package canvas

import "fmt"

// NodeID is a stable identifier for a node within a canvas.
// IDs are assigned at creation and preserved across save and load.
type NodeID string

// Direction distinguishes input ports from output ports.
type Direction int

const (
	// Input ports accept at most one incoming connection.
	Input Direction = iota
	// Output ports accept any number of outgoing connections.
	Output
)

// String returns "input" or "output".
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Vec2 is a 2D position or size in canvas coordinates.
type Vec2 struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// PortRef addresses a port by its owning node and its index in the node's
// ordered port list.
type PortRef struct {
	Node NodeID `json:"node" toml:"node"`
	Port int    `json:"port" toml:"port"`
}

// String formats the reference as "node[port]".
func (r PortRef) String() string { return fmt.Sprintf("%s[%d]", r.Node, r.Port) }

// Edge is a directed connection from an output port to an input port.
type Edge struct {
	From PortRef `json:"from"`
	To   PortRef `json:"to"`
}
