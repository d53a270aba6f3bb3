package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

// allSeed identifies a full recalculation in logs and hooks.
const allSeed = "*"

// Engine recalculates a graph after edits.
//
// An Engine is bound to one graph and, like the graph, is meant to be driven
// from a single goroutine. Concurrent front ends serialize calls themselves.
type Engine struct {
	graph  *canvas.Graph
	logger *log.Logger
}

// New creates an engine for g. If logger is nil, log.Default() is used.
func New(g *canvas.Graph, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{graph: g, logger: logger}
}

// Graph returns the graph this engine recalculates.
func (e *Engine) Graph() *canvas.Graph { return e.graph }

// RecalculateFrom recomputes id and every node reachable from it along
// output→input connections, each exactly once and after all of its feeders
// in the working set.
//
// A node whose calculation fails is recorded in the report and everything
// downstream of it is skipped, keeping previous output values; independent
// branches still run. The returned error is non-nil only when the pass could
// not run at all: NOT_FOUND for an unknown node, GRAPH_CYCLE if the graph
// contains a cycle, or GRAPH_BUSY when called while another pass is running.
func (e *Engine) RecalculateFrom(ctx context.Context, id canvas.NodeID) (*Report, error) {
	if _, ok := e.graph.Node(id); !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	return e.run(ctx, string(id), []canvas.NodeID{id})
}

// RecalculateAll recomputes the whole graph, seeded from every source node.
// Hosts call it after loading a canvas or on explicit request.
func (e *Engine) RecalculateAll(ctx context.Context) (*Report, error) {
	var seeds []canvas.NodeID
	for _, n := range e.graph.Sources() {
		seeds = append(seeds, n.ID)
	}
	return e.run(ctx, allSeed, seeds)
}

// Edit is the field-edit entry point: it sets a node field and recalculates
// from that node. Field errors are returned before any recalculation.
func (e *Engine) Edit(ctx context.Context, id canvas.NodeID, field string, value any) (*Report, error) {
	if err := e.graph.SetField(id, field, value); err != nil {
		return nil, err
	}
	return e.RecalculateFrom(ctx, id)
}

func (e *Engine) run(ctx context.Context, seed string, seeds []canvas.NodeID) (*Report, error) {
	if e.graph.Frozen() {
		return nil, errors.New(errors.ErrCodeGraphBusy, "recalculation requested during a recalculation pass")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Engine()
	release := e.graph.Freeze()
	defer release()

	set, err := closure(seeds, e.graph.Dependents)
	if err != nil {
		return nil, e.abort(ctx, seed, start, err)
	}
	order, err := sortByFeeders(set, e.graph)
	if err != nil {
		return nil, e.abort(ctx, seed, start, err)
	}

	report := e.execute(ctx, seed, order)
	report.Duration = time.Since(start)
	hooks.OnRecalcComplete(ctx, seed, len(report.Calculated), len(report.Failed), len(report.Skipped), report.Duration, nil)
	e.logger.Debug("recalculated",
		"seed", seed,
		"calculated", len(report.Calculated),
		"failed", len(report.Failed),
		"skipped", len(report.Skipped),
		"duration", report.Duration)
	return report, nil
}

func (e *Engine) abort(ctx context.Context, seed string, start time.Time, err error) error {
	e.logger.Error("recalculation aborted", "seed", seed, "error", err)
	observability.Engine().OnRecalcComplete(ctx, seed, 0, 0, 0, time.Since(start), err)
	return err
}

func (e *Engine) execute(ctx context.Context, seed string, order []canvas.NodeID) *Report {
	hooks := observability.Engine()
	hooks.OnRecalcStart(ctx, seed, len(order))

	report := &Report{Order: order}
	if seed != allSeed {
		report.Seed = canvas.NodeID(seed)
	}

	blocked := make(map[canvas.NodeID]bool)
	for _, id := range order {
		n, _ := e.graph.Node(id)
		if blockedBy(e.graph.Feeders(id), blocked) {
			blocked[id] = true
			report.Skipped = append(report.Skipped, id)
			continue
		}

		nodeStart := time.Now()
		ok, reason := e.graph.Calculate(id)
		hooks.OnNodeCalculated(ctx, string(id), n.Kind, ok, time.Since(nodeStart))
		if !ok {
			blocked[id] = true
			report.Failed = append(report.Failed, Failure{Node: id, Kind: n.Kind, Reason: reason})
			e.logger.Warn("node calculation failed", "node", n.Name, "id", id, "kind", n.Kind, "reason", reason)
			continue
		}
		report.Calculated = append(report.Calculated, id)
	}
	return report
}

func blockedBy(feeders []canvas.NodeID, blocked map[canvas.NodeID]bool) bool {
	for _, f := range feeders {
		if blocked[f] {
			return true
		}
	}
	return false
}
