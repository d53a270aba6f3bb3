package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/internal/server"
	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the canvas over HTTP",
		Long: `Serve a canvas over an HTTP JSON API.

The server keeps its canvas in the configured cache backend (file or Redis)
and restores it on the next start. With --canvas, that file replaces the
saved canvas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cat, err := newCatalog()
			if err != nil {
				return err
			}
			var g *canvas.Graph
			if c.canvasPath != "" {
				if g, err = canvasio.ImportFile(c.canvasPath, cat); err != nil {
					return err
				}
			}

			backend, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer backend.Close()
			sessions := session.NewCacheStore(backend, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "server:"))

			srv, err := server.New(ctx, cat, g, server.Options{
				Sessions:   sessions,
				SessionID:  c.cfg.Server.Session,
				SessionTTL: c.cfg.Cache.TTL.Duration,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			printInfo("Serving %s on %s", StyleHighlight.Render(srv.Graph().Name), StyleValue.Render(addr))
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
