package canvas

import (
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Validate checks the graph's structural invariants: ports know their owner
// and index, every edge is recorded on both ends and runs output→input, each
// input has at most one source, and the graph has no cycles.
//
// Connect and RemoveNode maintain these invariants, so Validate failing
// indicates a bug; it returns INTERNAL_ERROR, or GRAPH_CYCLE for a cycle.
func (g *Graph) Validate() error {
	if err := g.validateStructure(); err != nil {
		return err
	}
	return g.detectCycles()
}

func (g *Graph) validateStructure() error {
	if len(g.order) != len(g.nodes) {
		return errors.New(errors.ErrCodeInternal, "node order has %d entries for %d nodes", len(g.order), len(g.nodes))
	}
	for _, id := range g.order {
		n, ok := g.nodes[id]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "node order references missing node %s", id)
		}
		if n.owner != g {
			return errors.New(errors.ErrCodeInternal, "node %s has a stale owner", id)
		}
		for i, p := range n.ports {
			if p.node != id || p.index != i {
				return errors.New(errors.ErrCodeInternal, "port %q of node %s is misaddressed", p.Name, id)
			}
			if err := g.validatePort(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) validatePort(p *Port) error {
	if p.Direction == Input {
		if len(p.targets) > 0 {
			return errors.New(errors.ErrCodeInternal, "input %s has targets", p.Ref())
		}
		if p.source == nil {
			return nil
		}
		src, err := g.Port(*p.source)
		if err != nil || src.Direction != Output {
			return errors.New(errors.ErrCodeInternal, "input %s has an invalid source %s", p.Ref(), *p.source)
		}
		if count(src.targets, p.Ref()) != 1 {
			return errors.New(errors.ErrCodeInternal, "edge %s -> %s is one-sided", *p.source, p.Ref())
		}
		return nil
	}
	if p.source != nil {
		return errors.New(errors.ErrCodeInternal, "output %s has a source", p.Ref())
	}
	for _, t := range p.targets {
		dst, err := g.Port(t)
		if err != nil || dst.Direction != Input {
			return errors.New(errors.ErrCodeInternal, "output %s targets invalid port %s", p.Ref(), t)
		}
		if dst.source == nil || *dst.source != p.Ref() {
			return errors.New(errors.ErrCodeInternal, "edge %s -> %s is one-sided", p.Ref(), t)
		}
	}
	return nil
}

func count(refs []PortRef, r PortRef) int {
	n := 0
	for _, x := range refs {
		if x == r {
			n++
		}
	}
	return n
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, child := range g.Dependents(id) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return errors.New(errors.ErrCodeGraphCycle, "canvas contains a cycle through %s", id)
			}
		}
	}
	return nil
}
