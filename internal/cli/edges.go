package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// edgesCommand creates the edges command, which lists resolved references.
func (c *CLI) edgesCommand() *cobra.Command {
	var (
		withAsset bool
		strategy  string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "edges [model]",
		Short: "List the resolved references of a content model",
		Long: `List the resolved references of a content model.

Every reference field resolves to its target types: an unconstrained field
points at every type (itself included), an asset-only field at the Asset
type, and explicit targets that are missing from the model are dropped.

The drawing strategy follows from the count: more than 100 resolved edges
switches to light mode, one connection per pair of related types.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modelArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if cmd.Flags().Changed("with-asset") {
				opts.WithAsset = withAsset
			}
			if strategy != "" {
				opts.Strategy = strategy
			}
			return c.runEdges(cmd.Context(), args[0], opts, asJSON)
		},
	}

	cmd.Flags().BoolVar(&withAsset, "with-asset", false, "inject the internal Asset type")
	cmd.Flags().StringVar(&strategy, "strategy", "", "force a strategy: detailed, light")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategy)

	return cmd
}

func (c *CLI) runEdges(ctx context.Context, input string, opts pipeline.Options, asJSON bool) error {
	model, err := loadModel(input)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	analysis, err := runner.Analyze(ctx, model, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	if analysis.Count > 0 {
		fmt.Fprintln(stdout, edgeTable(analysis.Edges))
	}
	printKeyValue("edges", fmt.Sprint(analysis.Count))
	printKeyValue("threshold", fmt.Sprint(connect.Threshold))
	printKeyValue("strategy", strategyLabel(analysis.Strategy))
	return nil
}
