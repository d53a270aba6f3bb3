package canvas

import (
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Connect adds a connection from an output port to an input port.
//
// If the references are given as (input, output) they are swapped. The
// connection is rejected, leaving the graph unchanged, with:
//   - NOT_FOUND if either port does not exist
//   - DIRECTION if both ports share a direction
//   - TYPE_MISMATCH if the registry does not declare the types compatible
//   - GRAPH_CYCLE if the input's node already reaches the output's node
//
// On success any previous connection of the input is removed first, so an
// input is always fed by exactly one output. Outputs fan out without limit.
func (g *Graph) Connect(out, in PortRef) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	op, err := g.Port(out)
	if err != nil {
		return err
	}
	ip, err := g.Port(in)
	if err != nil {
		return err
	}
	if op.Direction == ip.Direction {
		return errors.New(errors.ErrCodeDirection, "cannot connect %s %s to %s %s",
			op.Direction, out, ip.Direction, in)
	}
	if op.Direction == Input {
		op, ip = ip, op
		out, in = in, out
	}
	if !g.registry.Compatible(op.Type, ip.Type) {
		return errors.New(errors.ErrCodeTypeMismatch, "cannot connect %s output %q to %s input %q",
			op.Type, op.Name, ip.Type, ip.Name)
	}
	if in.Node == out.Node || g.reaches(in.Node, out.Node) {
		return errors.New(errors.ErrCodeGraphCycle, "connecting %s to %s would create a cycle", out, in)
	}

	if ip.source != nil {
		if *ip.source == out {
			return nil
		}
		g.unlink(*ip.source, in)
	}
	src := out
	ip.source = &src
	op.targets = append(op.targets, in)
	return nil
}

// Disconnect removes the connection from out to in, swapping references given
// as (input, output) like Connect. Removing a connection that does not
// exist, including one between unknown ports, is a no-op.
// Returns GRAPH_BUSY while a recalculation pass holds the graph.
func (g *Graph) Disconnect(out, in PortRef) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if p, err := g.Port(out); err == nil && p.Direction == Input {
		out, in = in, out
	}
	g.unlink(out, in)
	return nil
}

// DisconnectPort removes every connection of the given port.
func (g *Graph) DisconnectPort(ref PortRef) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	p, err := g.Port(ref)
	if err != nil {
		return err
	}
	if p.Direction == Input {
		if p.source != nil {
			g.unlink(*p.source, ref)
		}
		return nil
	}
	for _, t := range p.Targets() {
		g.unlink(ref, t)
	}
	return nil
}

// unlink removes the edge out→in from both ends if it exists.
func (g *Graph) unlink(out, in PortRef) {
	ip, err := g.Port(in)
	if err != nil || ip.Direction != Input || ip.source == nil || *ip.source != out {
		return
	}
	ip.source = nil
	if op, err := g.Port(out); err == nil {
		op.removeTarget(in)
	}
}

// reaches reports whether to is reachable from from along output→input edges.
func (g *Graph) reaches(from, to NodeID) bool {
	visited := map[NodeID]bool{from: true}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Dependents(id) {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
