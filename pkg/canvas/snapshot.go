package canvas

import (
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/types"
)

// Snapshot is the structural data of a graph: everything needed to rebuild
// it except computed port values, which a full recalculation restores.
type Snapshot struct {
	Name        string               `json:"name" toml:"name"`
	Nodes       []NodeSnapshot       `json:"nodes" toml:"nodes"`
	Connections []ConnectionSnapshot `json:"connections" toml:"connections"`
}

// NodeSnapshot is the serialized form of a node.
type NodeSnapshot struct {
	ID       NodeID `json:"id" toml:"id"`
	Kind     string `json:"kind" toml:"kind"`
	Name     string `json:"name" toml:"name"`
	Position Vec2   `json:"position" toml:"position"`
	Size     Vec2   `json:"size" toml:"size"`
	Fields   Fields `json:"fields,omitempty" toml:"fields,omitempty"`
}

// ConnectionSnapshot is the serialized form of one output→input connection.
type ConnectionSnapshot struct {
	From     NodeID `json:"from" toml:"from"`
	FromPort int    `json:"from_port" toml:"from_port"`
	To       NodeID `json:"to" toml:"to"`
	ToPort   int    `json:"to_port" toml:"to_port"`
}

// Snapshot captures the graph's structure. Nodes appear in creation order
// and connections in [Graph.Edges] order, so equal graphs produce equal
// snapshots.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{
		Name:  g.Name,
		Nodes: make([]NodeSnapshot, 0, len(g.order)),
	}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:       n.ID,
			Kind:     n.Kind,
			Name:     n.Name,
			Position: n.Position,
			Size:     n.Size,
			Fields:   n.Fields.Clone(),
		})
	}
	for _, e := range g.Edges() {
		s.Connections = append(s.Connections, ConnectionSnapshot{
			From:     e.From.Node,
			FromPort: e.From.Port,
			To:       e.To.Node,
			ToPort:   e.To.Port,
		})
	}
	return s
}

// Restore rebuilds a graph from a snapshot. Node IDs are preserved and each
// connection is replayed through [Graph.Connect], so a snapshot describing an
// invalid graph is rejected with the same codes a live edit would get. Two
// connections feeding the same input are rejected with INVALID_INPUT.
//
// Field values are converted to the types of the kind's defaults; fields the
// kind does not declare are kept as-is. If reg is nil the catalog's registry
// is used.
func Restore(snap *Snapshot, cat *Catalog, reg *types.Registry) (*Graph, error) {
	if snap == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	if reg == nil {
		reg = cat.Registry()
	}
	g := New(snap.Name, reg)

	for _, ns := range snap.Nodes {
		k, ok := cat.Kind(ns.Kind)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownKind, "node %s: unknown node kind %q", ns.ID, ns.Kind)
		}
		n := cat.build(k, ns.ID, ns.Position)
		if ns.Name != "" {
			n.Name = ns.Name
		}
		if ns.Size != (Vec2{}) {
			n.Size = ns.Size
		}
		for name, v := range ns.Fields {
			def, declared := k.Fields[name]
			if !declared {
				n.Fields[name] = v
				continue
			}
			cv, err := coerceField(def, v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %s: field %q", ns.ID, name)
			}
			n.Fields[name] = cv
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	fed := make(map[PortRef]bool, len(snap.Connections))
	for _, c := range snap.Connections {
		out := PortRef{Node: c.From, Port: c.FromPort}
		in := PortRef{Node: c.To, Port: c.ToPort}
		target := in
		if p, err := g.Port(out); err == nil && p.Direction == Input {
			target = out
		}
		if fed[target] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "connection %s -> %s: input %s already connected", out, in, target)
		}
		if err := g.Connect(out, in); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "connection %s -> %s", out, in)
		}
		fed[target] = true
	}
	return g, nil
}
