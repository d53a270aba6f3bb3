package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sessionCommand creates the session management command.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the last session",
	}

	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionClearCommand())
	cmd.AddCommand(c.sessionPathCommand())

	return cmd
}

func (c *CLI) sessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show what the last session holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			sess, err := sessions.GetSession(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil || sess.Canvas == nil {
				printInfo("No session")
				return nil
			}
			source := sess.Source
			if source == "" {
				source = "(session only)"
			}
			printKeyValue("Canvas", sess.Canvas.Name)
			printKeyValue("Source", source)
			printKeyValue("Nodes", fmt.Sprint(len(sess.Canvas.Nodes)))
			printKeyValue("Connections", fmt.Sprint(len(sess.Canvas.Connections)))
			printKeyValue("Zoom", fmtValue(sess.Editor.Zoom))
			if sess.Editor.Selected != "" {
				printKeyValue("Selected", string(sess.Editor.Selected))
			}
			printKeyValue("Updated", sess.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			if !sess.ExpiresAt.IsZero() {
				printKeyValue("Expires", sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func (c *CLI) sessionClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the last session (canvas files are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			if err := sessions.DeleteSession(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Session cleared")
			return nil
		},
	}
}

func (c *CLI) sessionPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the session file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			fmt.Println(sessions.Path())
			return nil
		},
	}
}
