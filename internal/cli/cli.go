// Package cli implements the nodecanvas command-line interface.
//
// Every editing command works on one canvas: the file named by --canvas, or
// when that flag is absent, the canvas of the last session. After loading,
// the canvas is fully recalculated; after a mutating command, it is written
// back to its file (if it has one) and saved as the last session.
//
// # Commands
//
//   - new, add, remove, connect, disconnect, set: edit the canvas
//   - recalc, show: recalculate and inspect values
//   - types, kinds: list connection types and node kinds
//   - render: draw the canvas as SVG or DOT
//   - edit: interactive terminal editor
//   - serve: HTTP front end
//   - store: push and pull named canvases
//   - session, cache: manage local state
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/internal/config"
	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "nodecanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg        *config.Config
	configPath string
	canvasPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "nodecanvas edits and recalculates node graphs",
		Long:         `nodecanvas is a node-graph calculator: nodes with typed ports are wired into a directed acyclic graph, and every edit recalculates exactly the nodes downstream of it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			level := cfg.Level()
			if c.verbose {
				level = log.DebugLevel
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.canvasPath, "canvas", "c", "", "canvas file (.json or .toml); defaults to the last session")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodecanvas/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.recalcCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.kindsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newCatalog builds the catalog of built-in node kinds.
func newCatalog() (*canvas.Catalog, error) {
	cat := canvas.NewCatalog(nil)
	if err := nodes.Register(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// newCache opens the configured artifact cache, instrumented with the
// cache hooks.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.cfg.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Backend {
	case config.CacheRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		backend, err = cache.NewFileCache(cfg.Dir)
	}
	if err != nil {
		return nil, err
	}
	return cache.Instrumented(backend, "artifact"), nil
}

// newStore opens the configured canvas store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.cfg.Store
	if cfg.Backend == config.StoreMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	}
	return store.NewDirStore(cfg.Dir)
}
