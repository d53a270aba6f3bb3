package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// storeCommand creates the store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Push and pull named canvases (directory or MongoDB)",
	}

	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push [NAME]",
		Short: "Save the current canvas to the store (default name: the canvas name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			name := ws.graph.Name
			if len(args) == 1 {
				name = args[0]
			}

			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Save(ctx, name, ws.graph.Snapshot()); err != nil {
				return err
			}
			printSuccess("Pushed %s", StyleHighlight.Render(name))
			return nil
		},
	}
}

func (c *CLI) storePullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull NAME",
		Short: "Load a canvas from the store as the current session",
		Long: `Load a canvas from the store and make it the current session.

With --canvas, the pulled canvas is also written to that file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			snap, err := s.Load(ctx, args[0])
			if err != nil {
				return err
			}

			cat, err := newCatalog()
			if err != nil {
				return err
			}
			g, err := canvas.Restore(snap, cat, nil)
			if err != nil {
				return err
			}
			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			ws := &workspace{catalog: cat, graph: g, engine: engine.New(g, loggerFromContext(ctx)), source: c.canvasPath, sessions: sessions}
			report, err := ws.engine.RecalculateAll(ctx)
			if err != nil {
				return err
			}
			if ws.session, err = session.New(g, c.cfg.Session.TTL.Duration); err != nil {
				return err
			}
			if err := c.commit(ctx, ws); err != nil {
				return err
			}
			printSuccess("Pulled %s", StyleHighlight.Render(args[0]))
			printReport(report)
			if ws.source != "" {
				printFile(ws.source)
			}
			return nil
		},
	}
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored canvases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			entries, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Store is empty")
				return nil
			}
			var rows [][]string
			for _, e := range entries {
				rows = append(rows, []string{e.Name, fmt.Sprint(e.Nodes), e.UpdatedAt.Local().Format("2006-01-02 15:04")})
			}
			fmt.Println(newTable("Name", "Nodes", "Updated").Rows(rows...).Render())
			return nil
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a stored canvas",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
