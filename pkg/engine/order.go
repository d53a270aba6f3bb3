package engine

import (
	"container/heap"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// closure returns every node reachable from seeds through next, including the
// seeds themselves. Each node is expanded once. Reaching a node that is still
// on the current DFS path means the graph has a cycle.
func closure(seeds []canvas.NodeID, next func(canvas.NodeID) []canvas.NodeID) (map[canvas.NodeID]bool, error) {
	visited := make(map[canvas.NodeID]bool)
	onPath := make(map[canvas.NodeID]bool)

	var visit func(id canvas.NodeID) error
	visit = func(id canvas.NodeID) error {
		if onPath[id] {
			return errors.New(errors.ErrCodeGraphCycle, "cycle through node %s", id)
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		onPath[id] = true
		for _, n := range next(id) {
			if err := visit(n); err != nil {
				return err
			}
		}
		onPath[id] = false
		return nil
	}

	for _, s := range seeds {
		if err := visit(s); err != nil {
			return nil, err
		}
	}
	return visited, nil
}

// graphView is the part of a graph the sort needs.
type graphView interface {
	Nodes() []*canvas.Node
	Feeders(canvas.NodeID) []canvas.NodeID
	Dependents(canvas.NodeID) []canvas.NodeID
}

// sortByFeeders orders set so every node follows its feeders in set (Kahn's
// algorithm). Among nodes that are ready at the same time, the one created
// first goes first.
func sortByFeeders(set map[canvas.NodeID]bool, g graphView) ([]canvas.NodeID, error) {
	rank := make(map[canvas.NodeID]int, len(set))
	for i, n := range g.Nodes() {
		if set[n.ID] {
			rank[n.ID] = i
		}
	}

	pending := make(map[canvas.NodeID]int, len(set))
	ready := &rankHeap{rank: rank}
	for id := range set {
		for _, f := range g.Feeders(id) {
			if set[f] {
				pending[id]++
			}
		}
		if pending[id] == 0 {
			ready.ids = append(ready.ids, id)
		}
	}
	heap.Init(ready)

	order := make([]canvas.NodeID, 0, len(set))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(canvas.NodeID)
		order = append(order, id)
		for _, d := range g.Dependents(id) {
			if !set[d] {
				continue
			}
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(order) != len(set) {
		return nil, errors.New(errors.ErrCodeGraphCycle, "%d nodes are part of a cycle", len(set)-len(order))
	}
	return order, nil
}

// rankHeap is a min-heap of node IDs keyed by creation rank.
type rankHeap struct {
	ids  []canvas.NodeID
	rank map[canvas.NodeID]int
}

func (h *rankHeap) Len() int           { return len(h.ids) }
func (h *rankHeap) Less(i, j int) bool { return h.rank[h.ids[i]] < h.rank[h.ids[j]] }
func (h *rankHeap) Swap(i, j int)      { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *rankHeap) Push(x any)         { h.ids = append(h.ids, x.(canvas.NodeID)) }
func (h *rankHeap) Pop() any {
	old := h.ids
	n := len(old)
	id := old[n-1]
	h.ids = old[:n-1]
	return id
}
