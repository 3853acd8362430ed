package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	layoutFlags
	output    string
	formats   string
	highlight string
	strategy  string
	scale     float64
	watch     bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render a content model diagram",
		Long: `Render a content model diagram.

Cards are pinned at their computed (or saved) positions and every resolved
reference is drawn as a connection. Formats: svg (default), png, pdf, dot,
mermaid, json. Several formats may be given comma-separated; PNG and PDF need
rsvg-convert on PATH.

With --watch the model file is re-rendered whenever it changes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modelArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Formats = parseFormats(flags.formats)
			opts.Highlight = flags.highlight
			opts.Scale = flags.scale
			if flags.strategy != "" {
				opts.Strategy = flags.strategy
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}

			ctx := cmd.Context()
			input := args[0]
			if !flags.watch {
				return c.runRender(ctx, input, opts, flags.output, flags.noCache)
			}
			return c.watchRender(ctx, input, opts, flags.output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (default: <model>.<format>)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, mermaid, json (comma-separated)")
	cmd.Flags().StringVar(&flags.highlight, "highlight", "", "type whose neighbourhood is highlighted")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "force a strategy: detailed, light")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-render when the model changes")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategy)

	return cmd
}

// runRender renders input once to every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	paths, result, err := c.renderOnce(ctx, input, opts, output, noCache)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.TypeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printDetail("strategy: %s", result.Analysis.Strategy)
	return nil
}

// renderOnce executes the pipeline and writes the artifacts. It returns
// the written paths in format order.
func (c *CLI) renderOnce(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) ([]string, *pipeline.Result, error) {
	model, err := loadModel(input)
	if err != nil {
		return nil, nil, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", input))
	spinner.Start()
	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, model, opts)
	spinner.Stop()
	if err != nil {
		return nil, nil, err
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	paths := outputPaths(input, output, opts.Formats)
	for i, format := range opts.Formats {
		if err := writeOutput(paths[i], result.Artifacts[format]); err != nil {
			return nil, nil, err
		}
	}
	prog.done("rendered", "formats", len(opts.Formats), "types", result.Stats.TypeCount)
	return paths, result, nil
}

// outputPaths names one file per format. A single format with an explicit
// output is written there verbatim.
func outputPaths(input, output string, formats []string) []string {
	if len(formats) == 1 && output != "" {
		return []string{output}
	}
	base := basePath(output, input)
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = base + "." + extension(f)
	}
	return paths
}
