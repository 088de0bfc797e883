package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depinfo/pkg/info"
	"github.com/matzehuels/depinfo/pkg/render/nodelink"
)

type dotOpts struct {
	snapshot string
	svg      bool
	detailed bool
	output   string
	noCache  bool
}

// dotCommand creates the dot command.
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts

	cmd := &cobra.Command{
		Use:   "dot <graph.json>",
		Short: "Export a module graph as Graphviz DOT or SVG",
		Long: `Export the modules of a graph and the npm packages they resolve to as a
Graphviz diagram. Code imports are solid edges, type-only imports are dashed,
and modules that failed to load are red.`,
		Example: `  depinfo dot graph.json --snapshot snapshot.json | dot -Tpng > graph.png
  depinfo dot graph.json --snapshot snapshot.json --svg -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "npm resolution snapshot (JSON)")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add sizes to node labels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the package size cache")

	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, graphPath string, opts dotOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(ctx, opts.snapshot)
	if err != nil {
		return err
	}

	var sizer info.PackageSizer
	if opts.detailed {
		store := c.newCache(ctx, cfg, opts.noCache)
		defer store.Close()
		sizer = newSizer(cfg, store)
	}
	idx := info.BuildPackageIndex(ctx, g, snap, sizer)

	data := []byte(nodelink.ToDOT(g, idx, nodelink.Options{Detailed: opts.detailed}))
	if opts.svg {
		s := startStep(loggerFromContext(ctx), "render svg")
		if data, err = nodelink.RenderSVG(ctx, string(data)); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		s.done("bytes", len(data))
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}
