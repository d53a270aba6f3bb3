package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// mutate opens the workspace, applies fn, reports the recalculation and
// commits the result.
func (c *CLI) mutate(ctx context.Context, fn func(ws *workspace) (*engine.Report, error)) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	report, err := fn(ws)
	if err != nil {
		return err
	}
	if report != nil {
		printReport(report)
	}
	return c.commit(ctx, ws)
}

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new, empty canvas",
		Long: `Start a new, empty canvas and make it the current session.

With --canvas, the canvas is also written to that file; an existing file is
only replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := "untitled"
			if len(args) == 1 {
				name = args[0]
			}
			if err := errors.ValidateCanvasName(name); err != nil {
				return err
			}
			if c.canvasPath != "" && !force {
				if _, err := canvasio.FormatFromPath(c.canvasPath); err != nil {
					return err
				}
				if fileExists(c.canvasPath) {
					return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to replace it)", c.canvasPath)
				}
			}

			cat, err := newCatalog()
			if err != nil {
				return err
			}
			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			g := canvas.New(name, cat.Registry())
			ws := &workspace{catalog: cat, graph: g, engine: engine.New(g, c.Logger), source: c.canvasPath, sessions: sessions}
			sess, err := session.New(g, c.cfg.Session.TTL.Duration)
			if err != nil {
				return err
			}
			ws.session = sess
			if err := c.commit(ctx, ws); err != nil {
				return err
			}

			printSuccess("Created canvas %s", StyleHighlight.Render(name))
			if ws.source != "" {
				printFile(ws.source)
			}
			printNextStep("Add a node", appName+" add inputNode")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing canvas file")
	return cmd
}

// addCommand creates the "add" command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		at     string
		name   string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "add KIND",
		Short: "Add a node of the given kind",
		Example: `  nodecanvas add inputNode --set value=5
  nodecanvas add calcNode --at 250,100 --set op=mul`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos := canvas.Vec2{}
			if at != "" {
				var err error
				if pos, err = parseVec(at); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "--at")
				}
			}
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				n, err := ws.catalog.Create(args[0], pos)
				if err != nil {
					return nil, err
				}
				if name != "" {
					n.Name = name
				}
				if err := ws.graph.AddNode(n); err != nil {
					return nil, err
				}
				for _, kv := range fields {
					k, v, ok := strings.Cut(kv, "=")
					if !ok {
						return nil, errors.New(errors.ErrCodeInvalidInput, "--set %q: want FIELD=VALUE", kv)
					}
					if err := ws.graph.SetField(n.ID, k, parseValue(v)); err != nil {
						return nil, err
					}
				}
				printSuccess("Added %s %s", n.Kind, StyleHighlight.Render(string(n.ID)))
				return ws.engine.RecalculateFrom(cmd.Context(), n.ID)
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "position as X,Y")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the kind's title)")
	cmd.Flags().StringArrayVar(&fields, "set", nil, "initial field value as FIELD=VALUE (repeatable)")
	return cmd
}

// removeCommand creates the "remove" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NODE",
		Aliases: []string{"rm"},
		Short:   "Remove a node and all of its connections",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				n, err := resolveNode(ws.graph, args[0])
				if err != nil {
					return nil, err
				}
				dependents := ws.graph.Dependents(n.ID)
				if err := ws.graph.RemoveNode(n.ID); err != nil {
					return nil, err
				}
				printSuccess("Removed %s", StyleHighlight.Render(string(n.ID)))
				if len(dependents) == 0 {
					return nil, nil
				}
				return ws.engine.RecalculateAll(cmd.Context())
			})
		},
	}
}

// connectCommand creates the "connect" command.
func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect FROM:PORT TO:PORT",
		Short: "Connect an output port to an input port",
		Long: `Connect an output port to an input port.

Ports are written NODE:PORT, where NODE is a node ID or a unique ID prefix and
PORT is a port name or index. An input already fed by another output is
rewired to the new one.`,
		Example: `  nodecanvas connect 3f2a:Value 9c1b:In`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				from, to, err := resolvePorts(ws.graph, args[0], args[1])
				if err != nil {
					return nil, err
				}
				if err := ws.graph.Connect(from, to); err != nil {
					return nil, err
				}
				printSuccess("Connected %s %s %s", from, iconArrow, to)
				return ws.engine.RecalculateFrom(cmd.Context(), inputEnd(ws.graph, from, to))
			})
		},
	}
}

// disconnectCommand creates the "disconnect" command.
func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect FROM:PORT TO:PORT",
		Short: "Remove a connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				from, to, err := resolvePorts(ws.graph, args[0], args[1])
				if err != nil {
					return nil, err
				}
				if err := ws.graph.Disconnect(from, to); err != nil {
					return nil, err
				}
				printSuccess("Disconnected %s %s %s", from, iconArrow, to)
				id := inputEnd(ws.graph, from, to)
				if id == "" {
					return nil, nil
				}
				return ws.engine.RecalculateFrom(cmd.Context(), id)
			})
		},
	}
}

func resolvePorts(g *canvas.Graph, a, b string) (canvas.PortRef, canvas.PortRef, error) {
	from, err := resolvePort(g, a)
	if err != nil {
		return canvas.PortRef{}, canvas.PortRef{}, err
	}
	to, err := resolvePort(g, b)
	if err != nil {
		return canvas.PortRef{}, canvas.PortRef{}, err
	}
	return from, to, nil
}

// setCommand creates the "set" command.
func (c *CLI) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set NODE FIELD VALUE",
		Short:   "Edit a node field and recalculate downstream",
		Example: `  nodecanvas set 3f2a value 7`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				n, err := resolveNode(ws.graph, args[0])
				if err != nil {
					return nil, err
				}
				report, err := ws.engine.Edit(cmd.Context(), n.ID, args[1], parseValue(args[2]))
				if err != nil {
					return nil, err
				}
				printSuccess("Set %s.%s = %s", n.ID, args[1], fmtValue(n.Fields[args[1]]))
				return report, nil
			})
		},
	}
}

// recalcCommand creates the "recalc" command.
func (c *CLI) recalcCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc [NODE]",
		Short: "Recalculate the whole canvas, or everything downstream of NODE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) (*engine.Report, error) {
				if len(args) == 0 {
					return ws.engine.RecalculateAll(cmd.Context())
				}
				n, err := resolveNode(ws.graph, args[0])
				if err != nil {
					return nil, err
				}
				return ws.engine.RecalculateFrom(cmd.Context(), n.ID)
			})
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
