package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	canvasio "github.com/matzehuels/nodecanvas/pkg/io"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path; the extension picks the format
	format  string // svg or dot when output has no known extension
	values  bool   // include current values in node labels
	rankDir string // Graphviz rank direction: LR or TB
	noCache bool   // bypass the artifact cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{rankDir: "LR"}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the canvas as a node-link diagram (SVG or DOT)",
		Long: `Render the canvas as a node-link diagram.

The output format follows the --output extension (.svg or .dot), or --format
when writing to stdout. Rendered SVGs are cached by canvas content, so
rendering an unchanged canvas again is instant.`,
		Example: `  nodecanvas render -o canvas.svg --values
  nodecanvas render --format dot | dot -Tpng > canvas.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "" {
				if ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); ext != "" {
					opts.format = strings.ToLower(ext)
				}
			}
			if opts.format == "" {
				opts.format = formatSVG
			}
			if err := validateRenderOpts(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.svg or .dot); stdout if empty")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format when writing to stdout: svg (default), dot")
	cmd.Flags().BoolVar(&opts.values, "values", false, "show field and output values in node labels")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", opts.rankDir, "layout direction: LR or TB")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func validateRenderOpts(opts *renderOpts) error {
	if opts.format != formatSVG && opts.format != formatDOT {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", opts.format)
	}
	opts.rankDir = strings.ToUpper(opts.rankDir)
	if opts.rankDir != "LR" && opts.rankDir != "TB" {
		return fmt.Errorf("invalid rankdir: %s (must be 'LR' or 'TB')", opts.rankDir)
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}

	art, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		logger.Warn("artifact cache unavailable", "error", err)
		art = cache.NewNullCache()
	}
	defer art.Close()

	prog := newProgress(logger)
	data, cached, err := renderCached(ctx, art, ws.graph, opts, c.cfg.Cache.TTL.Duration)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeFile(opts.output, data); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", opts.output))
	printSuccess("Rendered %s", ws.graph.Name)
	printStats(ws.graph.Len(), ws.graph.EdgeCount(), cached)
	printFile(opts.output)
	return nil
}

// renderCached renders g, reusing a cached artifact for an identical
// canvas and option set. DOT output is cheap and never cached.
func renderCached(ctx context.Context, c cache.Cache, g *canvas.Graph, opts *renderOpts, ttl time.Duration) ([]byte, bool, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{Values: opts.values, RankDir: opts.rankDir})
	if opts.format == formatDOT {
		return []byte(dot), false, nil
	}

	snap, err := canvasio.MarshalSnapshot(g.Snapshot())
	if err != nil {
		return nil, false, err
	}
	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash(snap), cache.ArtifactKeyOpts{
		Format:  opts.format,
		Values:  opts.values,
		RankDir: opts.rankDir,
	})
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	spin := newSpinner(ctx, os.Stderr, "Rendering SVG...")
	spin.start()
	svg, err := nodelink.RenderSVG(ctx, dot)
	spin.stop()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, svg, ttl); err != nil {
		loggerFromContext(ctx).Warn("cache write failed", "error", err)
	}
	return svg, false, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
