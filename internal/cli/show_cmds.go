package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
)

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show nodes, connections and current values",
		Long: `Show the canvas with every port's current value.

With --format json or --format toml the canvas is printed in file form
instead, ready to be saved and imported again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "":
				fmt.Println(renderCanvas(ws.graph))
				return nil
			case string(canvasio.FormatJSON), string(canvasio.FormatTOML):
				return canvasio.Write(ws.graph, os.Stdout, canvasio.Format(format))
			}
			return fmt.Errorf("invalid format: %s (must be 'json' or 'toml')", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "print the canvas as json or toml")
	return cmd
}

// typesCommand creates the "types" command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List connection types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := newCatalog()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, d := range cat.Registry().All() {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color)).Render("■")
				rows = append(rows, []string{swatch + " " + d.Name, d.Color, fmtValue(d.Default), strings.Join(d.Accepts, ", ")})
			}
			fmt.Println(newTable("Type", "Color", "Default", "Accepts").Rows(rows...).Render())
			return nil
		},
	}
}

// kindsCommand creates the "kinds" command.
func (c *CLI) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List node kinds with their menu paths and ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := newCatalog()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, k := range cat.Kinds() {
				var ins, outs []string
				for _, p := range k.Ports {
					if p.Direction == canvas.Input {
						ins = append(ins, p.Name)
					} else {
						outs = append(outs, p.Name)
					}
				}
				rows = append(rows, []string{k.Menu, k.ID, strings.Join(ins, ", "), strings.Join(outs, ", "), fmtFields(k.Fields)})
			}
			fmt.Println(newTable("Menu", "Kind", "Inputs", "Outputs", "Fields").Rows(rows...).Render())
			return nil
		},
	}
}

// =============================================================================
// Rendering
// =============================================================================

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// renderCanvas draws the node table followed by the connection list.
func renderCanvas(g *canvas.Graph) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(g.Name))
	b.WriteString("\n")
	if g.Len() == 0 {
		b.WriteString(StyleDim.Render("  (empty canvas)"))
		return b.String()
	}

	var rows [][]string
	for _, n := range g.Nodes() {
		rows = append(rows, []string{string(n.ID), n.Name, fmtFields(n.Fields), fmtPorts(g, n, canvas.Input), fmtPorts(g, n, canvas.Output)})
	}
	b.WriteString(newTable("ID", "Name", "Fields", "Inputs", "Outputs").Rows(rows...).Render())

	if edges := g.Edges(); len(edges) > 0 {
		b.WriteString("\n")
		for _, e := range edges {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", fmtRef(g, e.From), StyleDim.Render(iconArrow), fmtRef(g, e.To)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func fmtPorts(g *canvas.Graph, n *canvas.Node, d canvas.Direction) string {
	var parts []string
	for _, p := range n.Ports() {
		if p.Direction != d {
			continue
		}
		v, _ := g.Value(p.Ref())
		parts = append(parts, fmt.Sprintf("%s=%s", p.Name, fmtValue(v)))
	}
	return strings.Join(parts, " ")
}

func fmtRef(g *canvas.Graph, ref canvas.PortRef) string {
	p, err := g.Port(ref)
	if err != nil {
		return ref.String()
	}
	return fmt.Sprintf("%s:%s", ref.Node, p.Name)
}

// printReport summarizes a recalculation pass.
func printReport(r *engine.Report) {
	if len(r.Order) == 0 {
		return
	}
	printInfo("Recalculated %d of %d nodes (%s)", len(r.Calculated), len(r.Order), r.Duration.Round(time.Microsecond))
	for _, f := range r.Failed {
		printWarning("%s (%s) failed: %s", f.Node, f.Kind, f.Reason)
	}
	if len(r.Skipped) > 0 {
		ids := make([]string, len(r.Skipped))
		for i, id := range r.Skipped {
			ids[i] = string(id)
		}
		printDetail("stale downstream: %s", strings.Join(ids, ", "))
	}
}
