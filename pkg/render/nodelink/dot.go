package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Values appends output and field values to node labels.
	// When false, only the name and kind are shown.
	Values bool

	// RankDir is the Graphviz rank direction. Defaults to "LR".
	RankDir string
}

const defaultEdgeColor = "#555555"

// ToDOT converts a canvas to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes whose inputs are all unconnected (sources) get a light fill so the
// entry points of the graph stand out.
func ToDOT(g *canvas.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(g, n, opts.Values)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	reg := g.Registry()
	for _, e := range g.Edges() {
		from, err := g.Port(e.From)
		if err != nil {
			continue
		}
		to, err := g.Port(e.To)
		if err != nil {
			continue
		}
		color := defaultEdgeColor
		if d, err := reg.Resolve(from.Type); err == nil && d.Color != "" {
			color = d.Color
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, color=%q];\n",
			string(e.From.Node), string(e.To.Node), from.Name+" → "+to.Name, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *canvas.Graph, n *canvas.Node, values bool) string {
	name := n.Name
	if name == "" {
		name = string(n.ID)
	}
	title := fmt.Sprintf("%s\n(%s)", name, n.Kind)
	if !values {
		return title
	}

	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fmtValue(n.Fields[k])))
	}
	for _, p := range n.Outputs() {
		v, err := g.Value(p.Ref())
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", p.Name, fmtValue(v)))
	}
	if len(parts) == 0 {
		return title
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func fmtValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return "-"
	}
	return fmt.Sprint(v)
}

func fmtAttrs(n *canvas.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsSource() {
		attrs = append(attrs, "fillcolor=\"#EEF6FF\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
