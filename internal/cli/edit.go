package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/session"
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the canvas interactively",
		Long: `Open the canvas in an interactive terminal editor.

Select a node, pick a field with tab and press enter to change it. Dependent
nodes are recalculated as soon as an edit is committed. Quitting saves the
canvas and the view (selection, zoom, pan) to the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			if ws.session == nil {
				if ws.session, err = session.New(ws.graph, c.cfg.Session.TTL.Duration); err != nil {
					return err
				}
			}

			result, err := tea.NewProgram(NewEditorModel(ctx, ws.engine, ws.session.Editor), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			m := result.(EditorModel)
			ws.session.Editor = m.State
			if err := c.commit(ctx, ws); err != nil {
				return err
			}
			if m.Dirty {
				printSuccess("Saved %s", StyleHighlight.Render(ws.graph.Name))
				if ws.source != "" {
					printFile(ws.source)
				}
			}
			return nil
		},
	}
}
