package server

import (
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/types"
)

type portView struct {
	Index     int              `json:"index"`
	Name      string           `json:"name"`
	Direction string           `json:"direction"`
	Type      string           `json:"type"`
	Required  bool             `json:"required,omitempty"`
	Connected bool             `json:"connected"`
	Value     any              `json:"value"`
	Source    *canvas.PortRef  `json:"source,omitempty"`
	Targets   []canvas.PortRef `json:"targets,omitempty"`
}

type nodeView struct {
	ID       canvas.NodeID `json:"id"`
	Kind     string        `json:"kind"`
	Name     string        `json:"name"`
	Position canvas.Vec2   `json:"position"`
	Size     canvas.Vec2   `json:"size"`
	Fields   canvas.Fields `json:"fields,omitempty"`
	Ports    []portView    `json:"ports"`
}

type canvasView struct {
	Name        string        `json:"name"`
	Nodes       []nodeView    `json:"nodes"`
	Connections []canvas.Edge `json:"connections"`
}

type typeView struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Default any      `json:"default"`
	Accepts []string `json:"accepts,omitempty"`
}

type kindView struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Menu   string        `json:"menu,omitempty"`
	Size   canvas.Vec2   `json:"size"`
	Ports  []specView    `json:"ports"`
	Fields canvas.Fields `json:"fields,omitempty"`
}

type specView struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
}

type result struct {
	Node    *nodeView      `json:"node,omitempty"`
	Report  *engine.Report `json:"report"`
	Warning string         `json:"warning,omitempty"`
}

func viewNode(g *canvas.Graph, n *canvas.Node) nodeView {
	v := nodeView{
		ID:       n.ID,
		Kind:     n.Kind,
		Name:     n.Name,
		Position: n.Position,
		Size:     n.Size,
		Fields:   n.Fields,
	}
	for _, p := range n.Ports() {
		pv := portView{
			Index:     p.Index(),
			Name:      p.Name,
			Direction: p.Direction.String(),
			Type:      p.Type,
			Required:  p.Required,
			Connected: p.Connected(),
			Targets:   p.Targets(),
		}
		pv.Value, _ = g.Value(p.Ref())
		if src, ok := p.Source(); ok {
			pv.Source = &src
		}
		v.Ports = append(v.Ports, pv)
	}
	return v
}

func viewCanvas(g *canvas.Graph) canvasView {
	v := canvasView{
		Name:        g.Name,
		Nodes:       []nodeView{},
		Connections: g.Edges(),
	}
	for _, n := range g.Nodes() {
		v.Nodes = append(v.Nodes, viewNode(g, n))
	}
	if v.Connections == nil {
		v.Connections = []canvas.Edge{}
	}
	return v
}

func viewTypes(reg *types.Registry) []typeView {
	var out []typeView
	for _, d := range reg.All() {
		out = append(out, typeView{Name: d.Name, Color: d.Color, Default: d.Default, Accepts: d.Accepts})
	}
	return out
}

func viewKinds(cat *canvas.Catalog) []kindView {
	var out []kindView
	for _, k := range cat.Kinds() {
		kv := kindView{ID: k.ID, Title: k.Title, Menu: k.Menu, Size: k.Size, Fields: k.Fields}
		for _, p := range k.Ports {
			kv.Ports = append(kv.Ports, specView{
				Name:      p.Name,
				Direction: p.Direction.String(),
				Type:      p.Type,
				Required:  p.Required,
			})
		}
		out = append(out, kv)
	}
	return out
}
