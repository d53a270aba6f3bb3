package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// workspace is a loaded, recalculated canvas plus where it came from.
type workspace struct {
	catalog  *canvas.Catalog
	graph    *canvas.Graph
	engine   *engine.Engine
	source   string // canvas file, "" for a session-only canvas
	session  *session.Session
	sessions *session.CLIStore
}

func (c *CLI) sessionStore() (*session.CLIStore, error) {
	return session.NewCLIStore(c.cfg.Session.Dir)
}

// open loads the canvas named by --canvas, or the last session's canvas,
// and recalculates it.
func (c *CLI) open(ctx context.Context) (*workspace, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	sessions, err := c.sessionStore()
	if err != nil {
		return nil, err
	}
	ws := &workspace{catalog: cat, sessions: sessions}

	switch {
	case c.canvasPath != "":
		g, err := canvasio.ImportFile(c.canvasPath, cat)
		if os.IsNotExist(unwrap(err)) {
			return nil, errors.New(errors.ErrCodeNotFound, "canvas %s does not exist (create it with `%s new`)", c.canvasPath, appName)
		}
		if err != nil {
			return nil, err
		}
		ws.graph, ws.source = g, c.canvasPath
		if prev, _ := sessions.GetSession(ctx); prev != nil && prev.Source == c.canvasPath {
			ws.session = prev
		}
	default:
		sess, err := sessions.GetSession(ctx)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "no canvas given and no previous session (create one with `%s new`)", appName)
		}
		g, err := sess.Restore(cat)
		if err != nil {
			return nil, err
		}
		ws.graph, ws.source, ws.session = g, sess.Source, sess
	}

	ws.engine = engine.New(ws.graph, loggerFromContext(ctx))
	report, err := ws.engine.RecalculateAll(ctx)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded canvas",
		"name", ws.graph.Name, "source", ws.source,
		"nodes", ws.graph.Len(), "edges", ws.graph.EdgeCount(), "ok", report.OK())
	return ws, nil
}

// commit writes the canvas back to its file, if any, and saves it as the
// last session.
func (c *CLI) commit(ctx context.Context, ws *workspace) error {
	if ws.source != "" {
		if err := canvasio.ExportFile(ws.graph, ws.source); err != nil {
			return err
		}
	}
	if ws.session == nil {
		sess, err := session.New(ws.graph, c.cfg.Session.TTL.Duration)
		if err != nil {
			return err
		}
		ws.session = sess
	}
	ws.session.Source = ws.source
	ws.session.Update(ws.graph)
	if ttl := c.cfg.Session.TTL.Duration; ttl > 0 {
		ws.session.ExpiresAt = time.Now().Add(ttl)
	}
	return ws.sessions.SaveSession(ctx, ws.session)
}

func unwrap(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

// =============================================================================
// Argument Parsing
// =============================================================================

// resolveNode finds a node by full ID or unique ID prefix.
func resolveNode(g *canvas.Graph, s string) (*canvas.Node, error) {
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty node ID")
	}
	if n, ok := g.Node(canvas.NodeID(s)); ok {
		return n, nil
	}
	var match *canvas.Node
	for _, n := range g.Nodes() {
		if strings.HasPrefix(string(n.ID), s) {
			if match != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "node prefix %q is ambiguous", s)
			}
			match = n
		}
	}
	if match == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", s)
	}
	return match, nil
}

// resolvePort parses "NODE:PORT", where NODE is an ID or ID prefix and PORT
// is a port index or name.
func resolvePort(g *canvas.Graph, s string) (canvas.PortRef, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return canvas.PortRef{}, errors.New(errors.ErrCodeInvalidInput, "port %q: want NODE:PORT", s)
	}
	n, err := resolveNode(g, s[:i])
	if err != nil {
		return canvas.PortRef{}, err
	}
	port := s[i+1:]
	if idx, err := strconv.Atoi(port); err == nil {
		return canvas.PortRef{Node: n.ID, Port: idx}, nil
	}
	p, ok := n.PortByName(port)
	if !ok {
		return canvas.PortRef{}, errors.New(errors.ErrCodeNotFound, "node %s has no port %q", n.ID, port)
	}
	return p.Ref(), nil
}

// parseValue interprets a command-line field value as a number, a boolean
// or, failing both, a string. Field coercion then converts it to the
// field's type.
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseVec parses "X,Y".
func parseVec(s string) (canvas.Vec2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return canvas.Vec2{}, fmt.Errorf("position %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return canvas.Vec2{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return canvas.Vec2{}, fmt.Errorf("position %q: %w", s, err)
	}
	return canvas.Vec2{X: x, Y: y}, nil
}

// inputEnd returns the node owning whichever of a and b is an input port.
func inputEnd(g *canvas.Graph, a, b canvas.PortRef) canvas.NodeID {
	for _, ref := range []canvas.PortRef{b, a} {
		if p, err := g.Port(ref); err == nil && p.IsInput() {
			return ref.Node
		}
	}
	return ""
}
