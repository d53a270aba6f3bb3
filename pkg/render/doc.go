// Package render turns canvases into pictures.
//
// The [nodelink] subpackage draws a canvas as a node-link diagram through
// Graphviz: nodes are boxes, connections are arrows colored by their
// connection type.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Values: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/nodecanvas/pkg/render/nodelink
package render
