package session

import "github.com/matzehuels/nodecanvas/pkg/canvas"

// Zoom limits of the editor view.
const (
	MinZoom = 0.6
	MaxZoom = 2.0
)

// EditorState is per-session view state. It never affects calculation.
type EditorState struct {
	Selected canvas.NodeID `json:"selected,omitempty"`
	Zoom     float64       `json:"zoom"`
	Offset   canvas.Vec2   `json:"offset"`
}

// NewEditorState returns the initial view: nothing selected, zoom 1.
func NewEditorState() EditorState {
	return EditorState{Zoom: 1}
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (e *EditorState) SetZoom(z float64) {
	e.Zoom = min(max(z, MinZoom), MaxZoom)
}

// Pan moves the viewport by (dx, dy).
func (e *EditorState) Pan(dx, dy float64) {
	e.Offset.X += dx
	e.Offset.Y += dy
}

// Select marks id as the selected node.
func (e *EditorState) Select(id canvas.NodeID) { e.Selected = id }

// Forget clears the selection if the selected node is no longer in g.
func (e *EditorState) Forget(g *canvas.Graph) {
	if e.Selected == "" {
		return
	}
	if _, ok := g.Node(e.Selected); !ok {
		e.Selected = ""
	}
}
