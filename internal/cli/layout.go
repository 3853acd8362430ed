package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/pipeline"
	"github.com/matzehuels/typegraph/pkg/refs"
)

// layoutFlags holds the flags shared by commands that position cards.
type layoutFlags struct {
	positions string
	withAsset bool
	refresh   bool
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.positions, "positions", "p", "", "saved positions file; used as-is when it covers the model")
	cmd.Flags().BoolVar(&f.withAsset, "with-asset", false, "inject the internal Asset type")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached positions")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagFilename("positions", "json")
}

// apply copies the flags onto opts. Flags that were not set keep the
// configured value.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	saved, err := loadPositions(f.positions)
	if err != nil {
		return err
	}
	opts.Saved = saved
	opts.Refresh = f.refresh
	if cmd.Flags().Changed("with-asset") {
		opts.WithAsset = f.withAsset
	}
	return nil
}

// layoutCommand creates the layout command for computing card positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [model]",
		Short: "Compute card positions for a content model",
		Long: `Compute card positions for a content model.

The layout command reads a model (JSON, YAML or TOML) and writes the position
of every entity type card as JSON. Up to three types are placed in a single
row; larger models are packed into floor(sqrt(n)) columns, each type going to
the currently shortest column.

A saved positions file (-p) that covers every type is kept unchanged, so
positions edited by hand or by dragging survive. Results are cached locally.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modelArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <model>.positions.json, - for stdout)")

	return cmd
}

// runLayout loads the model, computes positions and writes them.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	model, err := loadModel(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	positions, cacheHit, err := runner.ComputePositionsWithCacheInfo(ctx, model, opts)
	if err != nil {
		return fmt.Errorf("compute positions: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultPositionsPath(input)
	}
	if err := writePositions(outputPath, positions); err != nil {
		return err
	}
	if outputPath == "-" {
		return nil
	}

	if opts.WithAsset {
		model = model.WithAsset()
	}
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(positions), refs.Count(model), cacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s -p %s", appName, input, outputPath))

	return nil
}
