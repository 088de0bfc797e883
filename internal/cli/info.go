package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depinfo/pkg/info"
)

type infoOpts struct {
	snapshot string
	json     bool
	noCache  bool
}

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var opts infoOpts

	cmd := &cobra.Command{
		Use:   "info <graph.json>",
		Short: "Print the dependency tree of a module graph",
		Long: `Print the dependency tree of a module graph's root module.

Each module is listed with its size; npm modules expand into the packages of
the resolution snapshot. Modules and packages already printed are marked
with "*". With --json the graph document is printed instead, annotated with
the npm packages it resolved to.`,
		Example: `  depinfo info graph.json --snapshot snapshot.json
  depinfo info graph.json --snapshot snapshot.json --json > info.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "npm resolution snapshot (JSON)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the augmented graph document as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the package size cache")

	return cmd
}

func (c *CLI) runInfo(cmd *cobra.Command, graphPath string, opts infoOpts) error {
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

	out := cmd.OutOrStdout()
	if opts.json {
		return info.WriteJSON(ctx, out, g, snap)
	}

	store := c.newCache(ctx, cfg, opts.noCache)
	defer store.Close()

	f, _ := out.(*os.File)
	return info.Write(ctx, out, g, snap, info.Options{
		Sizer:  newSizer(cfg, store),
		Styles: reportStyles(out, useColor(cfg.Output.Color, f)),
	})
}
