package engine

import (
	"time"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
)

// Failure describes a node whose Calculate returned false.
type Failure struct {
	Node   canvas.NodeID `json:"node"`
	Kind   string        `json:"kind"`
	Reason string        `json:"reason"`
}

// Report is the outcome of one recalculation pass.
type Report struct {
	// Seed is the node the pass started from; empty for RecalculateAll.
	Seed canvas.NodeID `json:"seed,omitempty"`

	// Order is the working set in execution order.
	Order []canvas.NodeID `json:"order"`

	Calculated []canvas.NodeID `json:"calculated"`
	Failed     []Failure       `json:"failed,omitempty"`

	// Skipped nodes are downstream of a failure and keep their previous
	// output values.
	Skipped []canvas.NodeID `json:"skipped,omitempty"`

	Duration time.Duration `json:"duration"`
}

// OK reports whether every node in the working set calculated.
func (r *Report) OK() bool { return len(r.Failed) == 0 && len(r.Skipped) == 0 }

// Failure returns the failure recorded for id, if any.
func (r *Report) Failure(id canvas.NodeID) (Failure, bool) {
	for _, f := range r.Failed {
		if f.Node == id {
			return f, true
		}
	}
	return Failure{}, false
}
