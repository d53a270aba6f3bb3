package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	zoomStep = 0.1
	panStep  = 50
)

// =============================================================================
// EditorModel - Interactive canvas editing
// =============================================================================

// EditorModel is the bubbletea model for the canvas editor. It lists the
// nodes with their fields and output values; field edits go through the
// engine, so dependents update as soon as an edit is committed.
type EditorModel struct {
	ctx    context.Context
	graph  *canvas.Graph
	engine *engine.Engine

	State   session.EditorState
	Cursor  int
	Field   int
	Editing bool
	Buffer  string
	Status  string
	Dirty   bool
	Height  int
	Offset  int
}

// NewEditorModel creates an editor over an already recalculated graph,
// starting from a saved view state.
func NewEditorModel(ctx context.Context, e *engine.Engine, state session.EditorState) EditorModel {
	m := EditorModel{ctx: ctx, graph: e.Graph(), engine: e, State: state, Height: 15}
	if m.State.Zoom == 0 {
		m.State.SetZoom(1)
	}
	for i, n := range m.graph.Nodes() {
		if n.ID == state.Selected {
			m.Cursor = i
		}
	}
	m.sync()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Editing {
			return m.updateEditing(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Field = 0
			}
		case "down", "j":
			if m.Cursor < m.graph.Len()-1 {
				m.Cursor++
				m.Field = 0
			}
		case "tab":
			if names := m.fieldNames(); len(names) > 0 {
				m.Field = (m.Field + 1) % len(names)
			}
		case "enter", "e":
			names := m.fieldNames()
			if len(names) == 0 {
				m.Status = "node has no fields"
				return m, nil
			}
			n := m.current()
			m.Editing = true
			m.Buffer = fmtFieldValue(n.Fields[names[m.Field]])
			m.Status = ""
		case "r":
			m.report(m.engine.RecalculateAll(m.ctx))
		case "+", "=":
			m.State.SetZoom(m.State.Zoom + zoomStep)
		case "-":
			m.State.SetZoom(m.State.Zoom - zoomStep)
		case "left", "h":
			m.State.Pan(-panStep, 0)
		case "right", "l":
			m.State.Pan(panStep, 0)
		case "pgup":
			m.State.Pan(0, -panStep)
		case "pgdown":
			m.State.Pan(0, panStep)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.sync()
	return m, nil
}

func (m EditorModel) updateEditing(msg tea.KeyMsg) EditorModel {
	switch msg.Type {
	case tea.KeyEsc:
		m.Editing = false
		m.Buffer = ""
	case tea.KeyEnter:
		n := m.current()
		field := m.fieldNames()[m.Field]
		m.Editing = false
		m.report(m.engine.Edit(m.ctx, n.ID, field, parseValue(m.Buffer)))
		m.Buffer = ""
	case tea.KeyBackspace:
		if r := []rune(m.Buffer); len(r) > 0 {
			m.Buffer = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Buffer += string(msg.Runes)
	}
	return m
}

// report turns an engine result into the status line.
func (m *EditorModel) report(r *engine.Report, err error) {
	if err != nil {
		m.Status = StyleWarning.Render(FormatError(err))
		return
	}
	m.Dirty = true
	if len(r.Failed) > 0 {
		f := r.Failed[0]
		m.Status = StyleWarning.Render(fmt.Sprintf("%d node(s) failed, %s: %s", len(r.Failed), f.Node, f.Reason))
		return
	}
	m.Status = StyleSuccess.Render(fmt.Sprintf("recalculated %d node(s) in %s", len(r.Calculated), r.Duration.Round(time.Microsecond)))
}

// sync keeps the selection and the scroll window in step with the cursor.
func (m *EditorModel) sync() {
	if n := m.current(); n != nil {
		m.State.Select(n.ID)
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m EditorModel) current() *canvas.Node {
	nodes := m.graph.Nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return nil
	}
	return nodes[m.Cursor]
}

func (m EditorModel) fieldNames() []string {
	n := m.current()
	if n == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(n.Fields))
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.graph.Name))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  zoom %.1fx  offset %s,%s",
		m.State.Zoom, fmtValue(m.State.Offset.X), fmtValue(m.State.Offset.Y))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ node  tab field  ⏎ edit  r recalc  +/- zoom  ←/→ pan  q save & quit"))
	b.WriteString("\n\n")

	if m.graph.Len() == 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  empty canvas (add nodes with `%s add KIND`)", appName)))
		b.WriteString("\n")
		return b.String()
	}

	nodes := m.graph.Nodes()
	end := min(m.Offset+m.Height, len(nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.Name, n.Kind, fmtFields(n.Fields), m.outputs(n)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Fields", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if n := m.current(); n != nil {
		b.WriteString(listDimStyle.Render(string(n.ID)))
		b.WriteString("\n")
		for i, name := range m.fieldNames() {
			line := fmt.Sprintf("  %s = %s", name, fmtValue(n.Fields[name]))
			switch {
			case i == m.Field && m.Editing:
				line = listSelectedStyle.Render(fmt.Sprintf("▸ %s = %s█", name, m.Buffer))
			case i == m.Field:
				line = listSelectedStyle.Render("▸" + line[1:])
			default:
				line = listNormalStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(m.Status)
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(nodes))))

	return b.String()
}

func (m EditorModel) outputs(n *canvas.Node) string {
	var parts []string
	for _, p := range n.Outputs() {
		v, _ := m.graph.Value(p.Ref())
		parts = append(parts, p.Name+"="+fmtValue(v))
	}
	return strings.Join(parts, " ")
}

// fmtFieldValue is the editable text of a field: strings without quotes.
func fmtFieldValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmtValue(v)
}
